package cliente

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/academia-fuerza/api-cuotas/internal/mensalidade"
	"github.com/academia-fuerza/api-cuotas/internal/pagamento"
	"github.com/academia-fuerza/api-cuotas/internal/utils"
	"gorm.io/gorm"
)

type criarClienteRequest struct {
	Nome        string  `json:"nome"`
	Documento   *string `json:"documento"`
	Telefone    *string `json:"telefone"`
	Observacoes *string `json:"observacoes"`
}

// Campos ausentes no PUT mantêm o valor atual.
type atualizarClienteRequest struct {
	Nome        *string `json:"nome"`
	Documento   *string `json:"documento"`
	Telefone    *string `json:"telefone"`
	Observacoes *string `json:"observacoes"`
	Ativo       *bool   `json:"ativo"`
}

type diaVencimentoRequest struct {
	Dia *int `json:"dia"`
}

// Handler encapsula DB e repositories
type Handler struct {
	DB         *gorm.DB
	Repository Repository
	Pagamentos pagamento.Repository
	Agora      func() time.Time
	// AplicarDiaPersonalizado liga o uso de Cliente.DiaVencimento no cálculo.
	AplicarDiaPersonalizado bool
}

func NewHandler(db *gorm.DB, agora func() time.Time, aplicarDia bool) *Handler {
	return &Handler{
		DB:                      db,
		Repository:              NewRepository(),
		Pagamentos:              pagamento.NewRepository(),
		Agora:                   agora,
		AplicarDiaPersonalizado: aplicarDia,
	}
}

func (h *Handler) listar(r *http.Request) ([]ClienteDTO, error) {
	filtro := mensalidade.Status(strings.TrimSpace(r.URL.Query().Get("status")))
	switch filtro {
	case "", mensalidade.StatusNovo, mensalidade.StatusAtivo, mensalidade.StatusVencido:
	default:
		return nil, errStatusInvalido
	}

	list, err := h.Repository.ListarTodos(h.DB, r.URL.Query().Get("q"))
	if err != nil {
		return nil, err
	}

	hoje := h.Agora()
	out := make([]ClienteDTO, 0, len(list))
	for i := range list {
		dto := NovoClienteDTO(&list[i], hoje, h.AplicarDiaPersonalizado)
		if filtro != "" && dto.Mensalidade.Status != filtro {
			continue
		}
		out = append(out, dto)
	}
	return out, nil
}

var errStatusInvalido = errors.New("status deve ser New, Active ou Expired")

// GET /clientes?q=&status=
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	out, err := h.listar(r)
	if err != nil {
		if errors.Is(err, errStatusInvalido) {
			utils.Erro(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("erro ao listar clientes", "error", err)
		utils.Erro(w, http.StatusInternalServerError, "erro ao listar clientes")
		return
	}
	utils.JSON(w, http.StatusOK, out)
}

// GET /clientes/resumo
func (h *Handler) Resumo(w http.ResponseWriter, r *http.Request) {
	list, err := h.Repository.ListarTodos(h.DB, "")
	if err != nil {
		slog.Error("erro ao montar resumo", "error", err)
		utils.Erro(w, http.StatusInternalServerError, "erro ao montar resumo")
		return
	}
	hoje := h.Agora()
	situacoes := make([]mensalidade.Situacao, 0, len(list))
	for i := range list {
		situacoes = append(situacoes, Situacao(&list[i], hoje, h.AplicarDiaPersonalizado))
	}
	utils.JSON(w, http.StatusOK, Resumir(situacoes))
}

// GET /clientes/exportar aceita os mesmos filtros da listagem.
func (h *Handler) Exportar(w http.ResponseWriter, r *http.Request) {
	out, err := h.listar(r)
	if err != nil {
		if errors.Is(err, errStatusInvalido) {
			utils.Erro(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("erro ao exportar clientes", "error", err)
		utils.Erro(w, http.StatusInternalServerError, "erro ao exportar clientes")
		return
	}

	agora := h.Agora()
	nome := fmt.Sprintf("clientes_%s.xlsx", agora.Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename="+nome)
	if err := EscreverPlanilha(w, out, agora.Location()); err != nil {
		slog.Error("erro ao gerar planilha", "error", err)
	}
}

// POST /clientes
func (h *Handler) Criar(w http.ResponseWriter, r *http.Request) {
	var req criarClienteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Erro(w, http.StatusBadRequest, "payload inválido")
		return
	}
	req.Nome = strings.TrimSpace(req.Nome)
	if req.Nome == "" {
		utils.Erro(w, http.StatusBadRequest, "nome é obrigatório")
		return
	}

	c := Cliente{
		Nome:        req.Nome,
		Documento:   req.Documento,
		Telefone:    req.Telefone,
		Observacoes: req.Observacoes,
		Ativo:       true,
	}
	if err := h.Repository.Salvar(h.DB, &c); err != nil {
		slog.Error("erro ao salvar cliente", "nome", c.Nome, "error", err)
		utils.Erro(w, http.StatusInternalServerError, "erro ao salvar cliente")
		return
	}
	utils.JSON(w, http.StatusCreated, NovoClienteDTO(&c, h.Agora(), h.AplicarDiaPersonalizado))
}

// GET /clientes/{id}
func (h *Handler) BuscarPorID(w http.ResponseWriter, r *http.Request) {
	id, err := utils.IDDaRota(r, "id")
	if err != nil {
		utils.Erro(w, http.StatusBadRequest, "ID inválido")
		return
	}
	c, err := h.Repository.BuscarPorID(h.DB, id)
	if err != nil {
		h.falha(w, err, "erro ao buscar cliente", id)
		return
	}
	utils.JSON(w, http.StatusOK, NovoClienteDetalheDTO(c, h.Agora(), h.AplicarDiaPersonalizado))
}

// PUT /clientes/{id}
func (h *Handler) Atualizar(w http.ResponseWriter, r *http.Request) {
	id, err := utils.IDDaRota(r, "id")
	if err != nil {
		utils.Erro(w, http.StatusBadRequest, "ID inválido")
		return
	}
	var req atualizarClienteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Erro(w, http.StatusBadRequest, "payload inválido")
		return
	}
	if req.Nome != nil && strings.TrimSpace(*req.Nome) == "" {
		utils.Erro(w, http.StatusBadRequest, "nome não pode ser vazio")
		return
	}

	c, err := h.Repository.BuscarPorID(h.DB, id)
	if err != nil {
		h.falha(w, err, "erro ao buscar cliente", id)
		return
	}
	if req.Nome != nil {
		c.Nome = strings.TrimSpace(*req.Nome)
	}
	if req.Documento != nil {
		c.Documento = req.Documento
	}
	if req.Telefone != nil {
		c.Telefone = req.Telefone
	}
	if req.Observacoes != nil {
		c.Observacoes = req.Observacoes
	}
	if req.Ativo != nil {
		c.Ativo = *req.Ativo
	}

	if err := h.Repository.Atualizar(h.DB, c); err != nil {
		h.falha(w, err, "erro ao atualizar cliente", id)
		return
	}
	utils.JSON(w, http.StatusOK, NovoClienteDTO(c, h.Agora(), h.AplicarDiaPersonalizado))
}

// PATCH /clientes/{id}/dia-vencimento  {"dia": 1..31 | null}
func (h *Handler) DefinirDiaVencimento(w http.ResponseWriter, r *http.Request) {
	id, err := utils.IDDaRota(r, "id")
	if err != nil {
		utils.Erro(w, http.StatusBadRequest, "ID inválido")
		return
	}
	var req diaVencimentoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Erro(w, http.StatusBadRequest, "payload inválido")
		return
	}
	if req.Dia != nil && (*req.Dia < 1 || *req.Dia > 31) {
		utils.Erro(w, http.StatusBadRequest, "dia deve estar entre 1 e 31")
		return
	}

	if err := h.Repository.DefinirDiaVencimento(h.DB, id, req.Dia); err != nil {
		h.falha(w, err, "erro ao definir dia de vencimento", id)
		return
	}
	c, err := h.Repository.BuscarPorID(h.DB, id)
	if err != nil {
		h.falha(w, err, "erro ao buscar cliente", id)
		return
	}
	utils.JSON(w, http.StatusOK, NovoClienteDTO(c, h.Agora(), h.AplicarDiaPersonalizado))
}

// DELETE /clientes/{id} apaga também os pagamentos.
func (h *Handler) Deletar(w http.ResponseWriter, r *http.Request) {
	id, err := utils.IDDaRota(r, "id")
	if err != nil {
		utils.Erro(w, http.StatusBadRequest, "ID inválido")
		return
	}
	if err := h.Repository.Deletar(h.DB, id); err != nil {
		h.falha(w, err, "erro ao excluir cliente", id)
		return
	}
	slog.Info("cliente excluído", "cliente_id", id)
	utils.JSON(w, http.StatusOK, map[string]any{"success": true})
}

// POST /clientes/{id}/divida remove o pagamento mais recente, deixando a
// mensalidade como estava antes dele.
func (h *Handler) MarcarDivida(w http.ResponseWriter, r *http.Request) {
	id, err := utils.IDDaRota(r, "id")
	if err != nil {
		utils.Erro(w, http.StatusBadRequest, "ID inválido")
		return
	}
	if _, err := h.Pagamentos.BuscarCliente(h.DB, id); err != nil {
		h.falha(w, err, "erro ao buscar cliente", id)
		return
	}

	ultimo, err := h.Pagamentos.BuscarUltimoPorCliente(h.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Erro(w, http.StatusConflict, "cliente não tem pagamentos")
			return
		}
		slog.Error("erro ao buscar último pagamento", "cliente_id", id, "error", err)
		utils.Erro(w, http.StatusInternalServerError, "erro ao marcar dívida")
		return
	}
	if err := h.Pagamentos.Deletar(h.DB, ultimo.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// outra marcação removeu o mesmo pagamento antes desta
			utils.Erro(w, http.StatusConflict, "pagamento já foi removido, recarregue o cliente")
			return
		}
		slog.Error("erro ao remover último pagamento", "cliente_id", id, "pagamento_id", ultimo.ID, "error", err)
		utils.Erro(w, http.StatusInternalServerError, "erro ao marcar dívida")
		return
	}

	slog.Info("dívida marcada", "cliente_id", id, "pagamento_id", ultimo.ID)
	utils.JSON(w, http.StatusOK, map[string]any{"success": true, "pagamentoRemovido": ultimo})
}

func (h *Handler) falha(w http.ResponseWriter, err error, interno string, id uint) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Erro(w, http.StatusNotFound, "cliente não encontrado")
		return
	}
	slog.Error(interno, "cliente_id", id, "error", err)
	utils.Erro(w, http.StatusInternalServerError, interno)
}
