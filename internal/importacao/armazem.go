package importacao

import (
	"errors"

	"github.com/academia-fuerza/api-cuotas/internal/cliente"
	"github.com/academia-fuerza/api-cuotas/internal/pagamento"
	"gorm.io/gorm"
)

// Armazem é o que a importação precisa do banco, sempre dentro de uma transação.
type Armazem interface {
	BuscarOuCriarCliente(nome string) (id uint, criado bool, err error)
	// CriarPagamentoSeNaoExiste ignora pagamentos já gravados com o mesmo
	// cliente, data e valor, para que reimportar o arquivo não duplique nada.
	CriarPagamentoSeNaoExiste(p *pagamento.Pagamento) (criado bool, err error)
}

type armazemGorm struct {
	tx         *gorm.DB
	clientes   cliente.Repository
	pagamentos pagamento.Repository
}

func NovoArmazem(tx *gorm.DB) Armazem {
	return &armazemGorm{
		tx:         tx,
		clientes:   cliente.NewRepository(),
		pagamentos: pagamento.NewRepository(),
	}
}

func (a *armazemGorm) BuscarOuCriarCliente(nome string) (uint, bool, error) {
	c, err := a.clientes.BuscarPorNome(a.tx, nome)
	if err == nil {
		return c.ID, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, err
	}
	novo := cliente.Cliente{Nome: nome, Ativo: true}
	if err := a.clientes.Salvar(a.tx, &novo); err != nil {
		return 0, false, err
	}
	return novo.ID, true, nil
}

func (a *armazemGorm) CriarPagamentoSeNaoExiste(p *pagamento.Pagamento) (bool, error) {
	existe, err := a.pagamentos.Existe(a.tx, p.ClienteID, p.Data, p.Valor)
	if err != nil || existe {
		return false, err
	}
	if err := a.pagamentos.Criar(a.tx, p); err != nil {
		return false, err
	}
	return true, nil
}
