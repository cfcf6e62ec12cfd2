package cliente

import (
	"math"
	"time"

	"github.com/academia-fuerza/api-cuotas/internal/mensalidade"
	"github.com/academia-fuerza/api-cuotas/internal/pagamento"
)

type ClienteDTO struct {
	ID              uint                 `json:"id"`
	Nome            string               `json:"nome"`
	Documento       *string              `json:"documento"`
	Telefone        *string              `json:"telefone"`
	Observacoes     *string              `json:"observacoes"`
	Ativo           bool                 `json:"ativo"`
	DiaVencimento   *int                 `json:"diaVencimento"`
	CriadoEm        time.Time            `json:"criadoEm"`
	AtualizadoEm    time.Time            `json:"atualizadoEm"`
	Mensalidade     mensalidade.Situacao `json:"mensalidade"`
	UltimoPagamento *pagamento.Pagamento `json:"ultimoPagamento"`
}

// ClienteDetalheDTO acompanha o histórico completo, do mais recente ao mais antigo.
type ClienteDetalheDTO struct {
	ClienteDTO
	Pagamentos []pagamento.Pagamento `json:"pagamentos"`
}

type ResumoDTO struct {
	Total            int `json:"total"`
	Ativos           int `json:"ativos"`
	Vencidos         int `json:"vencidos"`
	Novos            int `json:"novos"`
	PercentualAtivos int `json:"percentualAtivos"`
}

// Situacao calcula a mensalidade do cliente a partir dos pagamentos carregados.
func Situacao(c *Cliente, hoje time.Time, aplicarDia bool) mensalidade.Situacao {
	datas := make([]time.Time, 0, len(c.Pagamentos))
	for _, p := range c.Pagamentos {
		datas = append(datas, p.Data)
	}
	dia := 0
	if aplicarDia && c.DiaVencimento != nil {
		dia = *c.DiaVencimento
	}
	return mensalidade.CalcularComDia(datas, hoje, dia)
}

func ultimoPagamento(ps []pagamento.Pagamento) *pagamento.Pagamento {
	var ultimo *pagamento.Pagamento
	for i := range ps {
		p := &ps[i]
		if ultimo == nil || p.Data.After(ultimo.Data) || (p.Data.Equal(ultimo.Data) && p.ID > ultimo.ID) {
			ultimo = p
		}
	}
	if ultimo == nil {
		return nil
	}
	cp := *ultimo
	return &cp
}

func NovoClienteDTO(c *Cliente, hoje time.Time, aplicarDia bool) ClienteDTO {
	return ClienteDTO{
		ID:              c.ID,
		Nome:            c.Nome,
		Documento:       c.Documento,
		Telefone:        c.Telefone,
		Observacoes:     c.Observacoes,
		Ativo:           c.Ativo,
		DiaVencimento:   c.DiaVencimento,
		CriadoEm:        c.CreatedAt,
		AtualizadoEm:    c.UpdatedAt,
		Mensalidade:     Situacao(c, hoje, aplicarDia),
		UltimoPagamento: ultimoPagamento(c.Pagamentos),
	}
}

func NovoClienteDetalheDTO(c *Cliente, hoje time.Time, aplicarDia bool) ClienteDetalheDTO {
	ps := c.Pagamentos
	if ps == nil {
		ps = []pagamento.Pagamento{}
	}
	return ClienteDetalheDTO{ClienteDTO: NovoClienteDTO(c, hoje, aplicarDia), Pagamentos: ps}
}

// Resumir conta os clientes por situação para o painel.
func Resumir(situacoes []mensalidade.Situacao) ResumoDTO {
	r := ResumoDTO{Total: len(situacoes)}
	for _, s := range situacoes {
		switch s.Status {
		case mensalidade.StatusAtivo:
			r.Ativos++
		case mensalidade.StatusVencido:
			r.Vencidos++
		case mensalidade.StatusNovo:
			r.Novos++
		}
	}
	if r.Total > 0 {
		r.PercentualAtivos = int(math.Round(float64(r.Ativos) / float64(r.Total) * 100))
	}
	return r
}
