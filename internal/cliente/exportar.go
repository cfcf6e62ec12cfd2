package cliente

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

const abaClientes = "Clientes"

var cabecalhoExportacao = []string{"Nome", "Documento", "Telefone", "Ativo", "Status", "Vencimento", "Dias de atraso", "Último pagamento", "Valor"}

func texto(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// EscreverPlanilha grava a lista de clientes, com a situação de cada um, em xlsx.
func EscreverPlanilha(w io.Writer, clientes []ClienteDTO, loc *time.Location) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", abaClientes); err != nil {
		return fmt.Errorf("renomear aba: %w", err)
	}

	for i, h := range cabecalhoExportacao {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(abaClientes, cell, h)
	}

	for i, c := range clientes {
		row := i + 2
		f.SetCellValue(abaClientes, fmt.Sprintf("A%d", row), c.Nome)
		f.SetCellValue(abaClientes, fmt.Sprintf("B%d", row), texto(c.Documento))
		f.SetCellValue(abaClientes, fmt.Sprintf("C%d", row), texto(c.Telefone))
		if c.Ativo {
			f.SetCellValue(abaClientes, fmt.Sprintf("D%d", row), "Sim")
		} else {
			f.SetCellValue(abaClientes, fmt.Sprintf("D%d", row), "Não")
		}
		f.SetCellValue(abaClientes, fmt.Sprintf("E%d", row), string(c.Mensalidade.Status))
		if c.Mensalidade.Vencimento != nil {
			f.SetCellValue(abaClientes, fmt.Sprintf("F%d", row), c.Mensalidade.Vencimento.Format("02/01/2006"))
		}
		f.SetCellValue(abaClientes, fmt.Sprintf("G%d", row), c.Mensalidade.DiasAtraso)
		if c.UltimoPagamento != nil {
			f.SetCellValue(abaClientes, fmt.Sprintf("H%d", row), c.UltimoPagamento.Data.In(loc).Format("02/01/2006"))
			f.SetCellValue(abaClientes, fmt.Sprintf("I%d", row), c.UltimoPagamento.Valor)
		}
	}

	return f.Write(w)
}
