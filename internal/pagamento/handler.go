package pagamento

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/academia-fuerza/api-cuotas/internal/utils"
	"gorm.io/gorm"
)

type registrarPagamentoRequest struct {
	ClienteID   uint     `json:"clienteId"`
	Valor       *float64 `json:"valor"`
	Data        string   `json:"data"`
	Observacoes *string  `json:"observacoes"`
}

type pagamentoComClienteDTO struct {
	Pagamento
	Cliente ClienteResumo `json:"cliente"`
}

// Handler encapsula DB e repository
type Handler struct {
	DB         *gorm.DB
	Repository Repository
	Agora      func() time.Time
}

func NewHandler(db *gorm.DB, agora func() time.Time) *Handler {
	return &Handler{
		DB:         db,
		Repository: NewRepository(),
		Agora:      agora,
	}
}

// POST /pagamentos
func (h *Handler) Registrar(w http.ResponseWriter, r *http.Request) {
	var req registrarPagamentoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Erro(w, http.StatusBadRequest, "payload inválido")
		return
	}
	if req.ClienteID == 0 {
		utils.Erro(w, http.StatusBadRequest, "clienteId é obrigatório")
		return
	}
	if req.Valor == nil || *req.Valor < 0 {
		utils.Erro(w, http.StatusBadRequest, "valor deve ser maior ou igual a zero")
		return
	}

	agora := h.Agora()
	data, err := ParseData(req.Data, agora)
	if err != nil {
		utils.Erro(w, http.StatusBadRequest, "data inválida, use RFC3339 ou AAAA-MM-DD")
		return
	}

	if _, err := h.Repository.BuscarCliente(h.DB, req.ClienteID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Erro(w, http.StatusNotFound, "cliente não encontrado")
			return
		}
		slog.Error("erro ao buscar cliente", "cliente_id", req.ClienteID, "error", err)
		utils.Erro(w, http.StatusInternalServerError, "erro ao registrar pagamento")
		return
	}

	p := Pagamento{
		ClienteID:   req.ClienteID,
		Valor:       *req.Valor,
		Data:        data,
		Observacoes: req.Observacoes,
	}
	if err := h.Repository.Criar(h.DB, &p); err != nil {
		slog.Error("erro ao salvar pagamento", "cliente_id", req.ClienteID, "error", err)
		utils.Erro(w, http.StatusInternalServerError, "erro ao registrar pagamento")
		return
	}

	utils.JSON(w, http.StatusCreated, p)
}

// GET /pagamentos/{id}
func (h *Handler) BuscarPorID(w http.ResponseWriter, r *http.Request) {
	id, err := utils.IDDaRota(r, "id")
	if err != nil {
		utils.Erro(w, http.StatusBadRequest, "ID inválido")
		return
	}

	p, err := h.Repository.BuscarPorID(h.DB, id)
	if err != nil {
		h.falha(w, err, "pagamento não encontrado", "erro ao buscar pagamento", id)
		return
	}
	c, err := h.Repository.BuscarCliente(h.DB, p.ClienteID)
	if err != nil {
		h.falha(w, err, "cliente do pagamento não encontrado", "erro ao buscar pagamento", id)
		return
	}

	utils.JSON(w, http.StatusOK, pagamentoComClienteDTO{Pagamento: *p, Cliente: *c})
}

// GET /clientes/{id}/pagamentos
func (h *Handler) ListarPorCliente(w http.ResponseWriter, r *http.Request) {
	id, err := utils.IDDaRota(r, "id")
	if err != nil {
		utils.Erro(w, http.StatusBadRequest, "ID inválido")
		return
	}

	if _, err := h.Repository.BuscarCliente(h.DB, id); err != nil {
		h.falha(w, err, "cliente não encontrado", "erro ao listar pagamentos", id)
		return
	}
	list, err := h.Repository.ListarPorCliente(h.DB, id)
	if err != nil {
		h.falha(w, err, "cliente não encontrado", "erro ao listar pagamentos", id)
		return
	}
	if list == nil {
		list = []Pagamento{}
	}
	utils.JSON(w, http.StatusOK, list)
}

// DELETE /pagamentos/{id} desfaz um pagamento registrado.
func (h *Handler) Deletar(w http.ResponseWriter, r *http.Request) {
	id, err := utils.IDDaRota(r, "id")
	if err != nil {
		utils.Erro(w, http.StatusBadRequest, "ID inválido")
		return
	}

	if err := h.Repository.Deletar(h.DB, id); err != nil {
		h.falha(w, err, "pagamento não encontrado", "erro ao excluir pagamento", id)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *Handler) falha(w http.ResponseWriter, err error, naoEncontrado, interno string, id uint) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Erro(w, http.StatusNotFound, naoEncontrado)
		return
	}
	slog.Error(interno, "id", id, "error", err)
	utils.Erro(w, http.StatusInternalServerError, interno)
}

// ParseData aceita RFC3339 ou AAAA-MM-DD (meia-noite na zona de agora).
// Vazio significa agora.
func ParseData(s string, agora time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return agora, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.ParseInLocation(time.DateOnly, s, agora.Location())
}
