package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/academia-fuerza/api-cuotas/internal/auth"
	"github.com/academia-fuerza/api-cuotas/internal/cliente"
	"github.com/academia-fuerza/api-cuotas/internal/config"
	"github.com/academia-fuerza/api-cuotas/internal/importacao"
	"github.com/academia-fuerza/api-cuotas/internal/notificacao"
	"github.com/academia-fuerza/api-cuotas/internal/pagamento"
	"github.com/academia-fuerza/api-cuotas/internal/usuario"
	"github.com/academia-fuerza/api-cuotas/internal/utils/db"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuração inválida", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.GetDB(ctx, cfg)
	if err != nil {
		slog.Error("erro ao conectar no banco", "error", err)
		os.Exit(1)
	}

	// AutoMigrate para todos os modelos
	if err := conn.AutoMigrate(
		&usuario.Usuario{},
		&cliente.Cliente{},
		&pagamento.Pagamento{},
		&auth.RefreshToken{},
	); err != nil {
		slog.Error("erro no AutoMigrate", "error", err)
		os.Exit(1)
	}

	emissor, err := auth.NovoEmissorDoAmbiente()
	if err != nil {
		slog.Error("chave de assinatura indisponível", "error", err)
		os.Exit(1)
	}
	rdb := config.ConectarRedis(ctx, cfg.RedisAddr)
	if rdb != nil {
		defer rdb.Close()
	}
	cache := auth.NovoCacheUsuarios(rdb)

	// Handlers
	agora := cfg.Agora()
	authHandler := auth.NewHandler(conn, emissor, cache, cfg.CookieSeguro)
	autenticador := auth.NewAutenticador(conn, emissor, cache)
	clienteHandler := cliente.NewHandler(conn, agora, cfg.AplicarDiaPersonalizado)
	pagamentoHandler := pagamento.NewHandler(conn, agora)
	importacaoHandler := importacao.NewHandler(conn, agora, notificacao.NovoWebhook(cfg.WebhookImportacao))

	// Router
	r := mux.NewRouter()

	// Rotas públicas
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/auth/refresh", authHandler.RefreshHTTP).Methods("POST")
	r.HandleFunc("/auth/logout", authHandler.Logout).Methods("POST")
	r.HandleFunc("/.well-known/jwks.json", emissor.JWKSHandler).Methods("GET")

	api := r.NewRoute().Subrouter()
	api.Use(autenticador.Middleware)

	api.HandleFunc("/me", authHandler.Me).Methods("GET")

	// Rotas de clientes
	api.HandleFunc("/clientes", clienteHandler.Listar).Methods("GET")
	api.HandleFunc("/clientes", clienteHandler.Criar).Methods("POST")
	api.HandleFunc("/clientes/resumo", clienteHandler.Resumo).Methods("GET")
	api.HandleFunc("/clientes/exportar", clienteHandler.Exportar).Methods("GET")
	api.HandleFunc("/clientes/{id:[0-9]+}", clienteHandler.BuscarPorID).Methods("GET")
	api.HandleFunc("/clientes/{id:[0-9]+}", clienteHandler.Atualizar).Methods("PUT")
	api.HandleFunc("/clientes/{id:[0-9]+}", clienteHandler.Deletar).Methods("DELETE")
	api.HandleFunc("/clientes/{id:[0-9]+}/dia-vencimento", clienteHandler.DefinirDiaVencimento).Methods("PATCH")
	api.HandleFunc("/clientes/{id:[0-9]+}/divida", clienteHandler.MarcarDivida).Methods("POST")
	api.HandleFunc("/clientes/{id:[0-9]+}/pagamentos", pagamentoHandler.ListarPorCliente).Methods("GET")

	// Rotas de pagamentos
	api.HandleFunc("/pagamentos", pagamentoHandler.Registrar).Methods("POST")
	api.HandleFunc("/pagamentos/{id:[0-9]+}", pagamentoHandler.BuscarPorID).Methods("GET")
	api.HandleFunc("/pagamentos/{id:[0-9]+}", pagamentoHandler.Deletar).Methods("DELETE")

	// Importação da planilha de cuotas
	api.HandleFunc("/importar", importacaoHandler.Importar).Methods("POST")

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.OrigensCORS,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Porta,
		Handler:           c.Handler(r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("servidor rodando", "addr", srv.Addr, "zona", cfg.Zona.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("servidor parou", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("erro ao encerrar servidor", "error", err)
	}
}
