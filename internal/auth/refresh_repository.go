package auth

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// ErrRefreshReusado indica que o token já tinha sido revogado por outra rotação.
var ErrRefreshReusado = errors.New("refresh token já revogado")

type RefreshRepository interface {
	Criar(db *gorm.DB, rt *RefreshToken) error
	BuscarPorHash(db *gorm.DB, hash string) (*RefreshToken, error)
	// Revogar devolve ErrRefreshReusado se o token já estava revogado.
	Revogar(db *gorm.DB, id uint, quando time.Time) error
	// RevogarFamilia invalida toda a cadeia de rotação de um login.
	RevogarFamilia(db *gorm.DB, familyID string, quando time.Time) error
}

type refreshRepositoryImpl struct{}

func NewRefreshRepository() RefreshRepository {
	return &refreshRepositoryImpl{}
}

func (r *refreshRepositoryImpl) Criar(db *gorm.DB, rt *RefreshToken) error {
	return db.Create(rt).Error
}

func (r *refreshRepositoryImpl) BuscarPorHash(db *gorm.DB, hash string) (*RefreshToken, error) {
	var rt RefreshToken
	if err := db.Where("hash = ?", hash).First(&rt).Error; err != nil {
		return nil, err
	}
	return &rt, nil
}

func (r *refreshRepositoryImpl) Revogar(db *gorm.DB, id uint, quando time.Time) error {
	res := db.Model(&RefreshToken{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("revoked_at", quando)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRefreshReusado
	}
	return nil
}

func (r *refreshRepositoryImpl) RevogarFamilia(db *gorm.DB, familyID string, quando time.Time) error {
	return db.Model(&RefreshToken{}).
		Where("family_id = ? AND revoked_at IS NULL", familyID).
		Update("revoked_at", quando).Error
}
