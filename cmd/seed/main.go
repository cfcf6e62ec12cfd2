// Comando seed cria ou atualiza o usuário administrador do painel.
//
//	go run ./cmd/seed -username admin
//
// Sem ADMIN_PASSWORD uma senha temporária é gerada e impressa uma única vez.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/academia-fuerza/api-cuotas/internal/config"
	"github.com/academia-fuerza/api-cuotas/internal/usuario"
	"github.com/academia-fuerza/api-cuotas/internal/utils"
	"github.com/academia-fuerza/api-cuotas/internal/utils/db"
)

func main() {
	username := flag.String("username", "admin", "usuário a criar ou atualizar")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuração inválida", "error", err)
		os.Exit(1)
	}

	conn, err := db.GetDB(context.Background(), cfg)
	if err != nil {
		slog.Error("erro ao conectar no banco", "error", err)
		os.Exit(1)
	}
	if err := conn.AutoMigrate(&usuario.Usuario{}); err != nil {
		slog.Error("erro no AutoMigrate", "error", err)
		os.Exit(1)
	}

	senha := os.Getenv("ADMIN_PASSWORD")
	gerada := senha == ""
	if gerada {
		if senha, err = utils.GerarSenhaTemporaria(); err != nil {
			slog.Error("erro ao gerar senha", "error", err)
			os.Exit(1)
		}
	}

	hash, err := utils.HashSenha(senha)
	if err != nil {
		slog.Error("erro ao gerar hash", "error", err)
		os.Exit(1)
	}
	u, err := usuario.NewRepository().SalvarSenha(conn, *username, hash)
	if err != nil {
		slog.Error("erro ao salvar usuário", "username", *username, "error", err)
		os.Exit(1)
	}

	slog.Info("usuário pronto", "id", u.ID, "username", u.Username)
	if gerada {
		fmt.Printf("senha temporária de %s: %s\n", u.Username, senha)
	}
}
