package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

// JSON escreve v com o status informado.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Erro responde {"error": msg}.
func Erro(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]string{"error": msg})
}

// IDDaRota lê um id numérico positivo das variáveis da rota.
func IDDaRota(r *http.Request, nome string) (uint, error) {
	id, err := strconv.ParseUint(mux.Vars(r)[nome], 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("id inválido: %q", mux.Vars(r)[nome])
	}
	return uint(id), nil
}
