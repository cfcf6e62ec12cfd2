package cliente

import (
	"github.com/academia-fuerza/api-cuotas/internal/pagamento"
	"gorm.io/gorm"
)

// Cliente é um sócio da academia.
type Cliente struct {
	gorm.Model
	Nome        string  `gorm:"not null;index" json:"nome"`
	Documento   *string `gorm:"index" json:"documento"`
	Telefone    *string `json:"telefone"`
	Observacoes *string `json:"observacoes"`
	Ativo       bool    `gorm:"not null;default:true" json:"ativo"`
	// DiaVencimento é a escolha do operador (1 a 31); nil usa o dia do primeiro pagamento.
	DiaVencimento *int `json:"diaVencimento"`

	Pagamentos []pagamento.Pagamento `gorm:"foreignKey:ClienteID;constraint:OnDelete:CASCADE" json:"pagamentos,omitempty"`
}

func (Cliente) TableName() string { return "clientes" }
