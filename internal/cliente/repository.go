package cliente

import (
	"strings"

	"github.com/academia-fuerza/api-cuotas/internal/pagamento"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	Salvar(db *gorm.DB, c *Cliente) error
	BuscarPorID(db *gorm.DB, id uint) (*Cliente, error)
	BuscarPorNome(db *gorm.DB, nome string) (*Cliente, error)
	// ListarTodos filtra por trecho do nome ou do documento quando busca não é vazia.
	ListarTodos(db *gorm.DB, busca string) ([]Cliente, error)
	Atualizar(db *gorm.DB, c *Cliente) error
	DefinirDiaVencimento(db *gorm.DB, id uint, dia *int) error
	Deletar(db *gorm.DB, id uint) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func pagamentosRecentes(db *gorm.DB) *gorm.DB {
	return db.Order("data DESC").Order("id DESC")
}

func (r *repositoryImpl) Salvar(db *gorm.DB, c *Cliente) error {
	return db.Omit(clause.Associations).Create(c).Error
}

func (r *repositoryImpl) BuscarPorID(db *gorm.DB, id uint) (*Cliente, error) {
	var c Cliente
	if err := db.Preload("Pagamentos", pagamentosRecentes).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repositoryImpl) BuscarPorNome(db *gorm.DB, nome string) (*Cliente, error) {
	var c Cliente
	if err := db.Where("nome = ?", nome).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repositoryImpl) ListarTodos(db *gorm.DB, busca string) ([]Cliente, error) {
	q := db.Preload("Pagamentos", pagamentosRecentes).Order("nome ASC")
	if busca = strings.TrimSpace(busca); busca != "" {
		like := "%" + escaparLike(strings.ToLower(busca)) + "%"
		q = q.Where(`LOWER(nome) LIKE ? ESCAPE '\' OR LOWER(COALESCE(documento, '')) LIKE ? ESCAPE '\'`, like, like)
	}
	var list []Cliente
	err := q.Find(&list).Error
	return list, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escaparLike faz % e _ da busca valerem como texto.
func escaparLike(s string) string {
	return likeEscaper.Replace(s)
}

// Atualizar grava só as colunas do cliente, nunca os pagamentos carregados.
func (r *repositoryImpl) Atualizar(db *gorm.DB, c *Cliente) error {
	return db.Omit(clause.Associations).Save(c).Error
}

func (r *repositoryImpl) DefinirDiaVencimento(db *gorm.DB, id uint, dia *int) error {
	res := db.Model(&Cliente{}).Where("id = ?", id).Update("dia_vencimento", dia)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Deletar remove o cliente e seus pagamentos na mesma transação.
func (r *repositoryImpl) Deletar(db *gorm.DB, id uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cliente_id = ?", id).Delete(&pagamento.Pagamento{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&Cliente{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
