package auth

import "time"

type RefreshToken struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"index"`
	Username  string    `gorm:"size:100"`
	FamilyID  string    `gorm:"size:36;index"`
	Hash      string    `gorm:"uniqueIndex"`
	ExpiresAt time.Time `gorm:"index"`
	RevokedAt *time.Time
	CreatedAt time.Time
}

func (RefreshToken) TableName() string { return "refresh_tokens" }

func (rt *RefreshToken) Ativo(agora time.Time) bool {
	return rt.RevokedAt == nil && agora.Before(rt.ExpiresAt)
}
