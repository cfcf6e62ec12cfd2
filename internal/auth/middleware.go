package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/academia-fuerza/api-cuotas/internal/usuario"
	"github.com/academia-fuerza/api-cuotas/internal/utils"
	"gorm.io/gorm"
)

type ctxKey string

const (
	CtxUserID   ctxKey = "usuarioID"
	CtxUsername ctxKey = "username"
)

// Autenticador resolve o usuário atual antes de qualquer rota protegida.
type Autenticador struct {
	DB       *gorm.DB
	Emissor  *Emissor
	Usuarios usuario.Repository
	Cache    *CacheUsuarios
}

func NewAutenticador(db *gorm.DB, emissor *Emissor, cache *CacheUsuarios) *Autenticador {
	return &Autenticador{
		DB:       db,
		Emissor:  emissor,
		Usuarios: usuario.NewRepository(),
		Cache:    cache,
	}
}

func (a *Autenticador) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		h := r.Header.Get("Authorization")
		if h == "" || !strings.HasPrefix(h, "Bearer ") {
			utils.Erro(w, http.StatusUnauthorized, "Token ausente")
			return
		}
		claims, err := a.Emissor.Validar(strings.TrimPrefix(h, "Bearer "))
		if err != nil {
			utils.Erro(w, http.StatusUnauthorized, "Token inválido")
			return
		}

		u, err := a.carregarUsuario(r.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.Erro(w, http.StatusUnauthorized, "Usuário do token não existe")
				return
			}
			slog.Error("erro ao carregar usuário do token", "user_id", claims.UserID, "error", err)
			utils.Erro(w, http.StatusInternalServerError, "erro ao validar sessão")
			return
		}

		ctx := context.WithValue(r.Context(), CtxUserID, u.ID)
		ctx = context.WithValue(ctx, CtxUsername, u.Username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *Autenticador) carregarUsuario(ctx context.Context, id uint) (*usuario.Usuario, error) {
	if u, ok := a.Cache.Buscar(ctx, id); ok {
		return u, nil
	}
	u, err := a.Usuarios.BuscarPorID(a.DB, id)
	if err != nil {
		return nil, err
	}
	a.Cache.Guardar(ctx, u)
	return u, nil
}

// UsuarioAtual devolve o usuário colocado no contexto pelo middleware.
func UsuarioAtual(ctx context.Context) (uint, string, bool) {
	id, ok := ctx.Value(CtxUserID).(uint)
	if !ok || id == 0 {
		return 0, "", false
	}
	username, _ := ctx.Value(CtxUsername).(string)
	return id, username, true
}
