package importacao

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/academia-fuerza/api-cuotas/internal/notificacao"
	"github.com/academia-fuerza/api-cuotas/internal/utils"
	"gorm.io/gorm"
)

const maxUpload = 10 << 20

type Handler struct {
	DB        *gorm.DB
	Agora     func() time.Time
	Transacao func(fn func(a Armazem) error) error
	Webhook   *notificacao.Webhook
}

func NewHandler(db *gorm.DB, agora func() time.Time, webhook *notificacao.Webhook) *Handler {
	return &Handler{
		DB:      db,
		Agora:   agora,
		Webhook: webhook,
		Transacao: func(fn func(a Armazem) error) error {
			return db.Transaction(func(tx *gorm.DB) error {
				return fn(NovoArmazem(tx))
			})
		},
	}
}

// POST /importar  multipart, campo "file"
func (h *Handler) Importar(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	file, header, err := r.FormFile("file")
	if err != nil {
		utils.Erro(w, http.StatusBadRequest, "nenhum arquivo enviado")
		return
	}
	defer file.Close()

	agora := h.Agora()
	linhas, err := LerPlanilha(file, agora.Year(), agora.Location())
	if err != nil {
		if errors.Is(err, ErrPlanilhaInvalida) || errors.Is(err, ErrPlanilhaVazia) {
			utils.Erro(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("erro ao ler planilha", "arquivo", header.Filename, "error", err)
		utils.Erro(w, http.StatusInternalServerError, "erro ao importar arquivo")
		return
	}

	var res Resultado
	err = h.Transacao(func(a Armazem) error {
		var err error
		res, err = Importar(a, linhas)
		return err
	})
	if err != nil {
		slog.Error("importação desfeita", "arquivo", header.Filename, "error", err)
		utils.Erro(w, http.StatusInternalServerError, "erro ao importar arquivo")
		return
	}

	slog.Info("planilha importada",
		"arquivo", header.Filename,
		"linhas", len(linhas),
		"clientes_criados", res.ClientesCriados,
		"pagamentos_criados", res.PagamentosCriados,
	)
	h.Webhook.EnviarEmSegundoPlano(notificacao.ImportacaoConcluida{
		Arquivo:           header.Filename,
		ClientesCriados:   res.ClientesCriados,
		PagamentosCriados: res.PagamentosCriados,
	})
	utils.JSON(w, http.StatusOK, res)
}
