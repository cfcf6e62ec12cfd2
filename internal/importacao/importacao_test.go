package importacao

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/academia-fuerza/api-cuotas/internal/pagamento"
	"github.com/xuri/excelize/v2"
)

var art = time.FixedZone("ART", -3*60*60)

// planilha monta um xlsx em memória; a primeira linha é o cabeçalho.
func planilha(t *testing.T, linhas [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, l := range linhas {
		for j, v := range l {
			if v == nil {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(j+1, i+1)
			if err := f.SetCellValue("Sheet1", cell, v); err != nil {
				t.Fatalf("set %s: %v", cell, err)
			}
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write xlsx: %v", err)
	}
	return buf
}

func exemplo(t *testing.T) *bytes.Buffer {
	return planilha(t, [][]any{
		{"NOMBRE", "enero", "Febrero", "OBS", "MARZO"},
		{"Ana Gómez", 20000, "pagó 12/2", 50000, "31/2"},
		{"Bruno Díaz", 500, nil, nil, "texto"},
		{"", 20000},
		{"alquiler", 90000},
		{"TOTAL", 110000},
		{4521, 20000},
		{"Carla Ruiz", nil, 15000.5},
	})
}

func TestLerPlanilha(t *testing.T) {
	linhas, err := LerPlanilha(exemplo(t), 2024, art)
	if err != nil {
		t.Fatalf("LerPlanilha: %v", err)
	}
	if len(linhas) != 3 {
		t.Fatalf("expected 3 client rows, got %d: %+v", len(linhas), linhas)
	}

	ana := linhas[0]
	if ana.Nome != "Ana Gómez" || len(ana.Pagamentos) != 2 {
		t.Fatalf("unexpected row: %+v", ana)
	}
	if p := ana.Pagamentos[0]; p.Valor != 20000 || p.Mes != "ENERO" || !p.Data.Equal(time.Date(2024, time.January, 1, 0, 0, 0, 0, art)) {
		t.Fatalf("amount cell: %+v", p)
	}
	if p := ana.Pagamentos[1]; p.Valor != 0 || p.Mes != "FEBRERO" || !p.Data.Equal(time.Date(2024, time.February, 12, 0, 0, 0, 0, art)) {
		t.Fatalf("D/M cell: %+v", p)
	}

	if bruno := linhas[1]; bruno.Nome != "Bruno Díaz" || len(bruno.Pagamentos) != 0 {
		t.Fatalf("small numbers and free text must be ignored: %+v", bruno)
	}
	if carla := linhas[2]; len(carla.Pagamentos) != 1 || carla.Pagamentos[0].Valor != 15000.5 {
		t.Fatalf("unexpected row: %+v", carla)
	}
}

func TestLerPlanilha_DatasInvalidas(t *testing.T) {
	buf := planilha(t, [][]any{
		{"", "ENERO", "FEBRERO", "MARZO"},
		{"Ana", "30/2", "0/3", "5/13"},
	})
	linhas, err := LerPlanilha(buf, 2024, art)
	if err != nil {
		t.Fatalf("LerPlanilha: %v", err)
	}
	if len(linhas) != 1 || len(linhas[0].Pagamentos) != 0 {
		t.Fatalf("impossible dates must be skipped: %+v", linhas)
	}
}

func TestLerPlanilha_Erros(t *testing.T) {
	if _, err := LerPlanilha(strings.NewReader("não é xlsx"), 2024, art); !errors.Is(err, ErrPlanilhaInvalida) {
		t.Fatalf("expected ErrPlanilhaInvalida, got %v", err)
	}
	if _, err := LerPlanilha(planilha(t, nil), 2024, art); !errors.Is(err, ErrPlanilhaVazia) {
		t.Fatalf("expected ErrPlanilhaVazia, got %v", err)
	}
}

type fakeArmazem struct {
	clientes   map[string]uint
	pagamentos []pagamento.Pagamento
	err        error
}

func newFakeArmazem() *fakeArmazem {
	return &fakeArmazem{clientes: map[string]uint{"Bruno Díaz": 1}}
}

func (f *fakeArmazem) BuscarOuCriarCliente(nome string) (uint, bool, error) {
	if id, ok := f.clientes[nome]; ok {
		return id, false, nil
	}
	id := uint(len(f.clientes) + 1)
	f.clientes[nome] = id
	return id, true, nil
}

func (f *fakeArmazem) CriarPagamentoSeNaoExiste(p *pagamento.Pagamento) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	for _, e := range f.pagamentos {
		if e.ClienteID == p.ClienteID && e.Data.Equal(p.Data) && e.Valor == p.Valor {
			return false, nil
		}
	}
	f.pagamentos = append(f.pagamentos, *p)
	return true, nil
}

func TestImportar(t *testing.T) {
	linhas, err := LerPlanilha(exemplo(t), 2024, art)
	if err != nil {
		t.Fatalf("LerPlanilha: %v", err)
	}
	a := newFakeArmazem()

	res, err := Importar(a, linhas)
	if err != nil {
		t.Fatalf("Importar: %v", err)
	}
	if res.ClientesCriados != 2 || res.PagamentosCriados != 3 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if obs := a.pagamentos[0].Observacoes; obs == nil || *obs != "Importado de ENERO" {
		t.Fatalf("unexpected notes: %v", obs)
	}

	// reimportar o mesmo arquivo não cria nada
	res, err = Importar(a, linhas)
	if err != nil {
		t.Fatalf("Importar again: %v", err)
	}
	if res.ClientesCriados != 0 || res.PagamentosCriados != 0 || len(a.pagamentos) != 3 {
		t.Fatalf("re-import must be idempotent: %+v", res)
	}
}

func upload(t *testing.T, h *Handler, campo string, conteudo []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(campo, "cuotas.xlsx")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	_, _ = fw.Write(conteudo)
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/importar", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	h.Importar(w, req)
	return w
}

func newTestHandler(a *fakeArmazem) *Handler {
	return &Handler{
		Agora: func() time.Time { return time.Date(2024, time.June, 3, 12, 0, 0, 0, art) },
		Transacao: func(fn func(a Armazem) error) error {
			return fn(a)
		},
	}
}

func TestHandler_Importar(t *testing.T) {
	a := newFakeArmazem()
	w := upload(t, newTestHandler(a), "file", exemplo(t).Bytes())
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var res Resultado
	if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.ClientesCriados != 2 || res.PagamentosCriados != 3 || res.Mensagem == "" {
		t.Fatalf("unexpected result: %+v", res)
	}
	// ano corrente vem do relógio do handler
	if got := a.pagamentos[0].Data; got.Year() != 2024 || got.Location() != art {
		t.Fatalf("unexpected payment date %v", got)
	}
}

func TestHandler_ImportarErros(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		if w := upload(t, newTestHandler(newFakeArmazem()), "outro", []byte("x")); w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("not a spreadsheet", func(t *testing.T) {
		if w := upload(t, newTestHandler(newFakeArmazem()), "file", []byte("x")); w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("storage failure", func(t *testing.T) {
		a := newFakeArmazem()
		a.err = errors.New("db down")
		if w := upload(t, newTestHandler(a), "file", exemplo(t).Bytes()); w.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", w.Code)
		}
	})
}
