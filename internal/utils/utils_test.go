package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
)

func TestHashSenha(t *testing.T) {
	hash, err := HashSenha("admin123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hash == "admin123" {
		t.Fatalf("hash must differ from the password")
	}
	if !CheckSenha(hash, "admin123") {
		t.Fatalf("expected password to match")
	}
	if CheckSenha(hash, "admin124") {
		t.Fatalf("expected wrong password to fail")
	}
}

func TestGerarSenhaTemporaria(t *testing.T) {
	a, err := GerarSenhaTemporaria()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, _ := GerarSenhaTemporaria()
	if len(a) != 12 || len(b) != 12 {
		t.Fatalf("expected 12 chars, got %q and %q", a, b)
	}
	if a == b {
		t.Fatalf("expected different passwords")
	}
}

func TestErro(t *testing.T) {
	w := httptest.NewRecorder()
	Erro(w, http.StatusNotFound, "cliente não encontrado")

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}
	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] != "cliente não encontrado" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestIDDaRota(t *testing.T) {
	tests := []struct {
		path string
		id   uint
		ok   bool
	}{
		{"/clientes/12", 12, true},
		{"/clientes/0", 0, false},
		{"/clientes/-3", 0, false},
		{"/clientes/abc", 0, false},
	}
	for _, tt := range tests {
		var got uint
		var err error
		r := mux.NewRouter()
		r.HandleFunc("/clientes/{id}", func(w http.ResponseWriter, r *http.Request) {
			got, err = IDDaRota(r, "id")
		})
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tt.path, nil))

		if tt.ok && (err != nil || got != tt.id) {
			t.Fatalf("%s: expected %d, got %d (%v)", tt.path, tt.id, got, err)
		}
		if !tt.ok && err == nil {
			t.Fatalf("%s: expected error", tt.path)
		}
	}
}
