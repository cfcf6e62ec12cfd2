package importacao

import (
	"fmt"

	"github.com/academia-fuerza/api-cuotas/internal/pagamento"
)

type Resultado struct {
	Mensagem          string `json:"message"`
	ClientesCriados   int    `json:"clientesCriados"`
	PagamentosCriados int    `json:"pagamentosCriados"`
}

// Importar grava as linhas lidas. Deve rodar dentro da transação do Armazem:
// qualquer erro desfaz a importação inteira.
func Importar(a Armazem, linhas []Linha) (Resultado, error) {
	var res Resultado
	for _, l := range linhas {
		id, criado, err := a.BuscarOuCriarCliente(l.Nome)
		if err != nil {
			return Resultado{}, fmt.Errorf("cliente %q: %w", l.Nome, err)
		}
		if criado {
			res.ClientesCriados++
		}

		for _, c := range l.Pagamentos {
			obs := "Importado de " + c.Mes
			p := pagamento.Pagamento{
				ClienteID:   id,
				Valor:       c.Valor,
				Data:        c.Data,
				Observacoes: &obs,
			}
			criado, err := a.CriarPagamentoSeNaoExiste(&p)
			if err != nil {
				return Resultado{}, fmt.Errorf("pagamento de %q em %s: %w", l.Nome, c.Data.Format("2006-01-02"), err)
			}
			if criado {
				res.PagamentosCriados++
			}
		}
	}
	res.Mensagem = "Importação concluída"
	return res, nil
}
