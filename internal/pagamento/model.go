package pagamento

import (
	"time"

	"gorm.io/gorm"
)

// Pagamento é uma mensalidade paga por um cliente.
type Pagamento struct {
	gorm.Model
	ClienteID   uint      `gorm:"not null;index" json:"clienteId"`
	Valor       float64   `gorm:"not null;default:0" json:"valor"`
	Data        time.Time `gorm:"not null;index" json:"data"`
	Observacoes *string   `json:"observacoes"`
}

func (Pagamento) TableName() string { return "pagamentos" }

// ClienteResumo é o recorte do cliente que este pacote enxerga.
type ClienteResumo struct {
	ID   uint   `json:"id"`
	Nome string `json:"nome"`
}
