package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/academia-fuerza/api-cuotas/internal/usuario"
	"github.com/academia-fuerza/api-cuotas/internal/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RefreshTTL    = 30 * 24 * time.Hour
	RefreshCookie = "rt"
)

func genRaw() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func hashRaw(raw string) string {
	h := sha256.Sum256([]byte(raw))
	return base64.RawURLEncoding.EncodeToString(h[:])
}

// Em localhost (http://localhost) o cookie precisa de Secure=false.
func (h *Handler) setRTCookie(w http.ResponseWriter, raw string, exp time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookie,
		Value:    raw,
		Path:     "/auth", // cobre /auth/refresh e /auth/logout
		HttpOnly: true,
		Secure:   h.CookieSeguro,
		SameSite: http.SameSiteLaxMode,
		Expires:  exp,
	})
}

func (h *Handler) clearRTCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookie,
		Value:    "",
		Path:     "/auth",
		HttpOnly: true,
		Secure:   h.CookieSeguro,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

type tokenResponse struct {
	AccessToken string           `json:"access_token"`
	TokenType   string           `json:"token_type"`
	ExpiresIn   int              `json:"expires_in"`
	Usuario     *usuario.Usuario `json:"usuario,omitempty"`
}

func (h *Handler) novoAccess(u *usuario.Usuario) (*tokenResponse, error) {
	access, err := h.Emissor.GerarAccessToken(u.ID, u.Username)
	if err != nil {
		return nil, err
	}
	return &tokenResponse{
		AccessToken: access,
		TokenType:   "Bearer",
		ExpiresIn:   int(AccessTTL.Seconds()),
		Usuario:     u,
	}, nil
}

// emitirRefresh grava um novo refresh token da família e devolve o valor cru.
func (h *Handler) emitirRefresh(tx *gorm.DB, u *usuario.Usuario, familyID string) (string, time.Time, error) {
	raw, err := genRaw()
	if err != nil {
		return "", time.Time{}, err
	}
	rt := RefreshToken{
		UserID:    u.ID,
		Username:  u.Username,
		FamilyID:  familyID,
		Hash:      hashRaw(raw),
		ExpiresAt: h.Agora().Add(RefreshTTL),
	}
	if err := h.Refresh.Criar(tx, &rt); err != nil {
		return "", time.Time{}, err
	}
	return raw, rt.ExpiresAt, nil
}

// POST /auth/refresh
func (h *Handler) RefreshHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie(RefreshCookie)
	if err != nil || c.Value == "" {
		utils.Erro(w, http.StatusUnauthorized, "no refresh")
		return
	}

	cur, err := h.Refresh.BuscarPorHash(h.DB, hashRaw(c.Value))
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			slog.Error("erro ao buscar refresh token", "error", err)
		}
		h.clearRTCookie(w)
		utils.Erro(w, http.StatusUnauthorized, "invalid refresh")
		return
	}

	agora := h.Agora()
	if cur.RevokedAt != nil {
		h.derrubarFamilia(w, cur, agora)
		return
	}
	if !cur.Ativo(agora) {
		h.clearRTCookie(w)
		utils.Erro(w, http.StatusUnauthorized, "expired refresh")
		return
	}

	u, err := h.Usuarios.BuscarPorID(h.DB, cur.UserID)
	if err != nil {
		h.clearRTCookie(w)
		utils.Erro(w, http.StatusUnauthorized, "invalid refresh")
		return
	}

	var raw string
	var exp time.Time
	err = h.Transacao(func(tx *gorm.DB) error {
		if err := h.Refresh.Revogar(tx, cur.ID, agora); err != nil {
			return err
		}
		var err error
		raw, exp, err = h.emitirRefresh(tx, u, cur.FamilyID)
		return err
	})
	if errors.Is(err, ErrRefreshReusado) {
		// outra requisição rotacionou o mesmo token primeiro
		h.derrubarFamilia(w, cur, agora)
		return
	}
	if err != nil {
		slog.Error("falha ao rotacionar refresh token", "user_id", u.ID, "error", err)
		utils.Erro(w, http.StatusInternalServerError, "erro ao renovar sessão")
		return
	}

	resp, err := h.novoAccess(u)
	if err != nil {
		slog.Error("falha ao gerar access token", "user_id", u.ID, "error", err)
		utils.Erro(w, http.StatusInternalServerError, "erro ao renovar sessão")
		return
	}
	h.setRTCookie(w, raw, exp)
	utils.JSON(w, http.StatusOK, resp)
}

// derrubarFamilia trata um token já rotacionado sendo reapresentado:
// revoga a família inteira e encerra a sessão.
func (h *Handler) derrubarFamilia(w http.ResponseWriter, cur *RefreshToken, agora time.Time) {
	slog.Warn("reuso de refresh token detectado", "user_id", cur.UserID, "family_id", cur.FamilyID)
	if err := h.Refresh.RevogarFamilia(h.DB, cur.FamilyID, agora); err != nil {
		slog.Error("falha ao revogar família", "family_id", cur.FamilyID, "error", err)
	}
	h.clearRTCookie(w)
	utils.Erro(w, http.StatusUnauthorized, "invalid refresh")
}

// POST /auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(RefreshCookie); err == nil && c.Value != "" {
		if cur, err := h.Refresh.BuscarPorHash(h.DB, hashRaw(c.Value)); err == nil {
			if err := h.Refresh.Revogar(h.DB, cur.ID, h.Agora()); err != nil && !errors.Is(err, ErrRefreshReusado) {
				slog.Error("falha ao revogar refresh token", "error", err)
			}
			h.Cache.Remover(r.Context(), cur.UserID)
		}
	}
	h.clearRTCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func novaFamilia() string {
	return uuid.NewString()
}
