package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/academia-fuerza/api-cuotas/internal/usuario"
	"github.com/academia-fuerza/api-cuotas/internal/utils"
	"gorm.io/gorm"
)

type Handler struct {
	DB           *gorm.DB
	Emissor      *Emissor
	Usuarios     usuario.Repository
	Refresh      RefreshRepository
	Cache        *CacheUsuarios
	CookieSeguro bool
	Agora        func() time.Time
	Transacao    func(fn func(tx *gorm.DB) error) error
}

func NewHandler(db *gorm.DB, emissor *Emissor, cache *CacheUsuarios, cookieSeguro bool) *Handler {
	return &Handler{
		DB:           db,
		Emissor:      emissor,
		Usuarios:     usuario.NewRepository(),
		Refresh:      NewRefreshRepository(),
		Cache:        cache,
		CookieSeguro: cookieSeguro,
		Agora:        time.Now,
		Transacao: func(fn func(tx *gorm.DB) error) error {
			return db.Transaction(fn)
		},
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// POST /auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Erro(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		utils.Erro(w, http.StatusBadRequest, "username e password são obrigatórios")
		return
	}

	u, err := h.Usuarios.BuscarPorUsername(h.DB, req.Username)
	if err != nil || !utils.CheckSenha(u.Senha, req.Password) {
		slog.Warn("tentativa de login recusada", "username", req.Username)
		utils.Erro(w, http.StatusUnauthorized, "Credenciais inválidas")
		return
	}

	raw, exp, err := h.emitirRefresh(h.DB, u, novaFamilia())
	if err != nil {
		slog.Error("falha ao gravar refresh token", "user_id", u.ID, "error", err)
		utils.Erro(w, http.StatusInternalServerError, "erro ao iniciar sessão")
		return
	}
	resp, err := h.novoAccess(u)
	if err != nil {
		slog.Error("falha ao gerar access token", "user_id", u.ID, "error", err)
		utils.Erro(w, http.StatusInternalServerError, "erro ao iniciar sessão")
		return
	}

	slog.Info("login", "user_id", u.ID, "username", u.Username)
	h.setRTCookie(w, raw, exp)
	utils.JSON(w, http.StatusOK, resp)
}

// GET /me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	id, username, ok := UsuarioAtual(r.Context())
	if !ok {
		utils.Erro(w, http.StatusUnauthorized, "não autenticado")
		return
	}
	utils.JSON(w, http.StatusOK, map[string]any{
		"id":       id,
		"username": username,
	})
}
