package importacao

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/academia-fuerza/api-cuotas/internal/mensalidade"
	"github.com/xuri/excelize/v2"
)

var (
	ErrPlanilhaInvalida = errors.New("arquivo não é uma planilha xlsx válida")
	ErrPlanilhaVazia    = errors.New("planilha sem linhas")
)

// Cabeçalhos de mês reconhecidos na linha 0.
var meses = map[string]time.Month{
	"ENERO":      time.January,
	"FEBRERO":    time.February,
	"MARZO":      time.March,
	"ABRIL":      time.April,
	"MAYO":       time.May,
	"JUNIO":      time.June,
	"JULIO":      time.July,
	"AGOSTO":     time.August,
	"SEPTIEMBRE": time.September,
	"OCTUBRE":    time.October,
	"NOVIEMBRE":  time.November,
	"DICIEMBRE":  time.December,
}

// Linhas de rodapé que não são clientes.
var ignorados = map[string]bool{
	"ALQUILER": true,
	"LUZ":      true,
	"AGUA":     true,
	"TOTAL":    true,
}

var diaMes = regexp.MustCompile(`(\d{1,2})/(\d{1,2})`)

// valorMinimo separa valores pagos de números pequenos soltos na planilha.
const valorMinimo = 1000

type Candidato struct {
	Mes   string
	Data  time.Time
	Valor float64
}

type Linha struct {
	Nome       string
	Pagamentos []Candidato
}

type colunaMes struct {
	indice int
	nome   string
	mes    time.Month
}

// LerPlanilha lê a primeira aba: linha 0 com os meses, coluna 0 com os nomes.
// Datas são meia-noite de loc no ano informado.
func LerPlanilha(r io.Reader, ano int, loc *time.Location) ([]Linha, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPlanilhaInvalida, err)
	}
	defer f.Close()

	abas := f.GetSheetList()
	if len(abas) == 0 {
		return nil, ErrPlanilhaVazia
	}
	rows, err := f.GetRows(abas[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("ler aba %q: %w", abas[0], err)
	}
	if len(rows) == 0 {
		return nil, ErrPlanilhaVazia
	}

	var colunas []colunaMes
	for i, cell := range rows[0] {
		nome := strings.ToUpper(cell)
		if m, ok := meses[nome]; ok {
			colunas = append(colunas, colunaMes{indice: i, nome: nome, mes: m})
		}
	}

	var linhas []Linha
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		nome := row[0]
		if nome == "" || numerico(nome) || ignorados[strings.ToUpper(nome)] {
			continue
		}

		l := Linha{Nome: nome}
		for _, c := range colunas {
			if c.indice >= len(row) || row[c.indice] == "" {
				continue
			}
			if cand, ok := lerCelula(row[c.indice], c, ano, loc); ok {
				l.Pagamentos = append(l.Pagamentos, cand)
			}
		}
		linhas = append(linhas, l)
	}
	return linhas, nil
}

func numerico(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// lerCelula: número acima de valorMinimo é um valor pago no dia 1 do mês da
// coluna; texto com D/M é um pagamento de valor 0 naquela data.
func lerCelula(cell string, c colunaMes, ano int, loc *time.Location) (Candidato, bool) {
	if v, err := strconv.ParseFloat(cell, 64); err == nil {
		if v > valorMinimo {
			return Candidato{Mes: c.nome, Data: time.Date(ano, c.mes, 1, 0, 0, 0, 0, loc), Valor: v}, true
		}
		return Candidato{}, false
	}

	m := diaMes.FindStringSubmatch(cell)
	if m == nil {
		return Candidato{}, false
	}
	d, _ := strconv.Atoi(m[1])
	mes, _ := strconv.Atoi(m[2])
	if mes < 1 || mes > 12 || d < 1 || d > mensalidade.UltimoDiaDoMes(ano, time.Month(mes)) {
		return Candidato{}, false
	}
	return Candidato{Mes: c.nome, Data: time.Date(ano, time.Month(mes), d, 0, 0, 0, 0, loc)}, true
}
