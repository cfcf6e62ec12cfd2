package notificacao

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Webhook avisa um endpoint externo quando uma importação termina.
// URL vazia desliga o envio.
type Webhook struct {
	URL    string
	Client *http.Client
}

func NovoWebhook(url string) *Webhook {
	return &Webhook{URL: url, Client: &http.Client{Timeout: 5 * time.Second}}
}

type ImportacaoConcluida struct {
	Arquivo           string `json:"arquivo"`
	ClientesCriados   int    `json:"clientesCriados"`
	PagamentosCriados int    `json:"pagamentosCriados"`
}

func (w *Webhook) Enviar(ctx context.Context, evento ImportacaoConcluida) error {
	if w == nil || w.URL == "" {
		return nil
	}
	body, err := json.Marshal(map[string]any{
		"mensagem": "Importação de planilha concluída",
		"evento":   evento,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.Client.Do(req)
	if err != nil {
		return fmt.Errorf("enviar webhook: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook respondeu %d", resp.StatusCode)
	}
	return nil
}

// EnviarEmSegundoPlano não bloqueia a resposta HTTP; falhas só vão para o log.
func (w *Webhook) EnviarEmSegundoPlano(evento ImportacaoConcluida) {
	if w == nil || w.URL == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := w.Enviar(ctx, evento); err != nil {
			slog.Warn("falha ao enviar webhook de importação", "error", err)
		}
	}()
}
