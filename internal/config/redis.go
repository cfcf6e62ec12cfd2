package config

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// ConectarRedis devolve nil quando REDIS_ADDR não está definido ou o
// servidor não responde; nesse caso o cache de usuários fica desligado.
func ConectarRedis(ctx context.Context, addr string) *redis.Client {
	if addr == "" {
		slog.Warn("REDIS_ADDR não definido, cache desabilitado")
		return nil
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Error("não foi possível conectar ao Redis", "addr", addr, "error", err)
		_ = rdb.Close()
		return nil
	}

	slog.Info("conectado ao Redis", "addr", addr)
	return rdb
}
