package db

import (
	"context"

	"github.com/academia-fuerza/api-cuotas/internal/config"
	"gorm.io/gorm"
)

// GetDB abre a conexão usando as credenciais do ambiente ou, na falta delas,
// as do Secrets Manager.
func GetDB(ctx context.Context, cfg *config.Config) (*gorm.DB, error) {
	username, password := cfg.DBUsuario, cfg.DBSenha
	if username == "" || password == "" {
		creds, err := retrieveCredentials(ctx, cfg.DBSecretID)
		if err != nil {
			return nil, err
		}
		username, password = creds.Username, creds.Password
	}
	return ConnectDataBase(cfg.DBHost, cfg.DBPorta, cfg.DBNome, username, password, cfg.DBSSL)
}
