package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

const zonaPadrao = "America/Argentina/Buenos_Aires"

// Config reúne as variáveis de ambiente do serviço. As chaves do token são
// lidas pelo pacote auth (AUTH_*).
type Config struct {
	Porta        string
	OrigensCORS  []string
	CookieSeguro bool
	Zona         *time.Location

	DBHost     string
	DBPorta    uint
	DBNome     string
	DBUsuario  string
	DBSenha    string
	DBSecretID string
	DBSSL      bool

	RedisAddr string

	// WebhookImportacao recebe um POST ao fim de cada importação; vazio desliga.
	WebhookImportacao string

	// AplicarDiaPersonalizado faz o dia de vencimento definido pelo operador
	// substituir o derivado do primeiro pagamento.
	AplicarDiaPersonalizado bool
}

// Load carrega o .env (se existir) e monta a Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("não foi possível ler .env", "error", err)
	}
	return FromEnv()
}

func FromEnv() (*Config, error) {
	zonaNome := getenvDefault("TZ_GIMNASIO", zonaPadrao)
	zona, err := time.LoadLocation(zonaNome)
	if err != nil {
		return nil, fmt.Errorf("zona horária %q: %w", zonaNome, err)
	}

	porta, err := strconv.ParseUint(getenvDefault("DB_PORT", "5432"), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("DB_PORT inválida: %w", err)
	}

	return &Config{
		Porta:                   getenvDefault("PORT", "8080"),
		OrigensCORS:             splitList(getenvDefault("CORS_ORIGINS", "http://localhost:3000")),
		CookieSeguro:            os.Getenv("COOKIE_SECURE") == "true",
		Zona:                    zona,
		DBHost:                  getenvDefault("DB_HOST", "localhost"),
		DBPorta:                 uint(porta),
		DBNome:                  getenvDefault("DB_NAME", "gimnasio"),
		DBUsuario:               os.Getenv("DB_USERNAME"),
		DBSenha:                 os.Getenv("DB_PASSWORD"),
		DBSecretID:              os.Getenv("DB_SECRET_ID"),
		DBSSL:                   os.Getenv("DB_SSL_MODE_DISABLE") != "true",
		RedisAddr:               os.Getenv("REDIS_ADDR"),
		WebhookImportacao:       os.Getenv("WEBHOOK_IMPORTACAO_URL"),
		AplicarDiaPersonalizado: os.Getenv("APLICAR_DIA_PERSONALIZADO") == "true",
	}, nil
}

// Agora devolve a função de relógio na zona configurada.
func (c *Config) Agora() func() time.Time {
	return func() time.Time { return time.Now().In(c.Zona) }
}

func getenvDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
