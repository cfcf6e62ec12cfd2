package pagamento

import (
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Criar(db *gorm.DB, p *Pagamento) error
	BuscarPorID(db *gorm.DB, id uint) (*Pagamento, error)
	ListarPorCliente(db *gorm.DB, clienteID uint) ([]Pagamento, error)
	BuscarUltimoPorCliente(db *gorm.DB, clienteID uint) (*Pagamento, error)
	Existe(db *gorm.DB, clienteID uint, data time.Time, valor float64) (bool, error)
	Deletar(db *gorm.DB, id uint) error
	BuscarCliente(db *gorm.DB, clienteID uint) (*ClienteResumo, error)
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Criar(db *gorm.DB, p *Pagamento) error {
	return db.Create(p).Error
}

func (r *repositoryImpl) BuscarPorID(db *gorm.DB, id uint) (*Pagamento, error) {
	var p Pagamento
	if err := db.First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// ListarPorCliente devolve os pagamentos do mais recente ao mais antigo.
func (r *repositoryImpl) ListarPorCliente(db *gorm.DB, clienteID uint) ([]Pagamento, error) {
	var list []Pagamento
	err := db.Where("cliente_id = ?", clienteID).
		Order("data DESC").
		Order("id DESC").
		Find(&list).Error
	return list, err
}

func (r *repositoryImpl) BuscarUltimoPorCliente(db *gorm.DB, clienteID uint) (*Pagamento, error) {
	var p Pagamento
	err := db.Where("cliente_id = ?", clienteID).
		Order("data DESC").
		Order("id DESC").
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repositoryImpl) Existe(db *gorm.DB, clienteID uint, data time.Time, valor float64) (bool, error) {
	var n int64
	err := db.Model(&Pagamento{}).
		Where("cliente_id = ? AND data = ? AND valor = ?", clienteID, data, valor).
		Count(&n).Error
	return n > 0, err
}

// Deletar retorna gorm.ErrRecordNotFound se nada foi apagado.
func (r *repositoryImpl) Deletar(db *gorm.DB, id uint) error {
	res := db.Delete(&Pagamento{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repositoryImpl) BuscarCliente(db *gorm.DB, clienteID uint) (*ClienteResumo, error) {
	var c ClienteResumo
	err := db.Table("clientes").
		Select("id, nome").
		Where("id = ? AND deleted_at IS NULL", clienteID).
		Take(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}
