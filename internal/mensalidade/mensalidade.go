package mensalidade

import (
	"encoding/json"
	"slices"
	"time"
)

type Status string

const (
	StatusNovo    Status = "New"
	StatusAtivo   Status = "Active"
	StatusVencido Status = "Expired"
)

// Situacao é a projeção calculada; não tem tabela própria.
type Situacao struct {
	Status     Status
	Vencimento *time.Time
	DiasAtraso int
}

// Calcular deriva a situação usando como dia de vencimento o do primeiro pagamento.
func Calcular(datas []time.Time, hoje time.Time) Situacao {
	return CalcularComDia(datas, hoje, 0)
}

// CalcularComDia é igual a Calcular, mas se dia estiver entre 1 e 31 ele
// substitui o dia derivado do primeiro pagamento. Sem pagamentos o cliente
// continua Novo.
func CalcularComDia(datas []time.Time, hoje time.Time, dia int) Situacao {
	if len(datas) == 0 {
		return Situacao{Status: StatusNovo}
	}

	loc := hoje.Location()
	ordenadas := slices.Clone(datas)
	slices.SortStableFunc(ordenadas, func(a, b time.Time) int { return a.Compare(b) })

	primeiro := ordenadas[0].In(loc)
	ultimo := ordenadas[len(ordenadas)-1].In(loc)

	if dia < 1 || dia > 31 {
		dia = primeiro.Day()
	}

	venc := DataVencimento(ultimo, dia)
	if atraso := DiasEntre(venc, hoje); atraso > 0 {
		return Situacao{Status: StatusVencido, Vencimento: &venc, DiasAtraso: atraso}
	}
	return Situacao{Status: StatusAtivo, Vencimento: &venc}
}

// DataVencimento devolve o dia `dia` do mês seguinte ao de ultimoPagamento,
// limitado ao último dia desse mês.
func DataVencimento(ultimoPagamento time.Time, dia int) time.Time {
	ano, mes, _ := ultimoPagamento.Date()
	mes++
	if mes > time.December {
		mes = time.January
		ano++
	}
	if ultimo := UltimoDiaDoMes(ano, mes); dia > ultimo {
		dia = ultimo
	}
	return time.Date(ano, mes, dia, 0, 0, 0, 0, ultimoPagamento.Location())
}

func UltimoDiaDoMes(ano int, mes time.Month) int {
	return time.Date(ano, mes+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DiasEntre conta dias civis de `de` até `ate`, cada um na sua própria zona.
// Negativo se ate for anterior.
func DiasEntre(de, ate time.Time) int {
	dy, dm, dd := de.Date()
	ay, am, ad := ate.Date()
	a := time.Date(dy, dm, dd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

func (s Situacao) MarshalJSON() ([]byte, error) {
	var venc *string
	if s.Vencimento != nil {
		v := s.Vencimento.Format(time.DateOnly)
		venc = &v
	}
	return json.Marshal(struct {
		Status     Status  `json:"status"`
		Vencimento *string `json:"dueDate"`
		DiasAtraso int     `json:"daysOverdue"`
	}{s.Status, venc, s.DiasAtraso})
}
