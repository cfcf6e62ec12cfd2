package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/academia-fuerza/api-cuotas/internal/usuario"
	"github.com/redis/go-redis/v9"
)

const userCacheTTL = 10 * time.Minute

// CacheUsuarios guarda no Redis os usuários já validados pelo middleware.
// Um cache nil (ou sem cliente) simplesmente não faz nada.
type CacheUsuarios struct {
	rdb *redis.Client
}

func NovoCacheUsuarios(rdb *redis.Client) *CacheUsuarios {
	return &CacheUsuarios{rdb: rdb}
}

func cacheKey(id uint) string {
	return fmt.Sprintf("usuario:%d", id)
}

func (c *CacheUsuarios) ativo() bool {
	return c != nil && c.rdb != nil
}

func (c *CacheUsuarios) Buscar(ctx context.Context, id uint) (*usuario.Usuario, bool) {
	if !c.ativo() {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, cacheKey(id)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Error("redis GET falhou", "error", err, "user_id", id)
		}
		return nil, false
	}
	var u usuario.Usuario
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		slog.Warn("usuário em cache inválido", "user_id", id, "error", err)
		return nil, false
	}
	return &u, true
}

func (c *CacheUsuarios) Guardar(ctx context.Context, u *usuario.Usuario) {
	if !c.ativo() {
		return
	}
	b, err := json.Marshal(u)
	if err != nil {
		slog.Error("falha ao serializar usuário para cache", "error", err, "user_id", u.ID)
		return
	}
	if err := c.rdb.Set(ctx, cacheKey(u.ID), b, userCacheTTL).Err(); err != nil {
		slog.Error("redis SET falhou", "error", err, "user_id", u.ID)
	}
}

func (c *CacheUsuarios) Remover(ctx context.Context, id uint) {
	if !c.ativo() {
		return
	}
	if err := c.rdb.Del(ctx, cacheKey(id)).Err(); err != nil {
		slog.Error("redis DEL falhou", "error", err, "user_id", id)
	}
}
