package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/academia-fuerza/api-cuotas/internal/usuario"
	"github.com/academia-fuerza/api-cuotas/internal/utils"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

type fakeUsuarios struct {
	porID map[uint]*usuario.Usuario
}

func (f *fakeUsuarios) BuscarPorUsername(_ *gorm.DB, username string) (*usuario.Usuario, error) {
	for _, u := range f.porID {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUsuarios) BuscarPorID(_ *gorm.DB, id uint) (*usuario.Usuario, error) {
	u, ok := f.porID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsuarios) SalvarSenha(_ *gorm.DB, username, hash string) (*usuario.Usuario, error) {
	u := &usuario.Usuario{ID: uint(len(f.porID) + 1), Username: username, Senha: hash}
	f.porID[u.ID] = u
	return u, nil
}

type fakeRefresh struct {
	tokens []*RefreshToken
	// leituraAntiga devolve o token como estava antes de qualquer revogação,
	// como acontece com a requisição que perde a corrida de rotação.
	leituraAntiga bool
}

func (f *fakeRefresh) Criar(_ *gorm.DB, rt *RefreshToken) error {
	rt.ID = uint(len(f.tokens) + 1)
	cp := *rt
	f.tokens = append(f.tokens, &cp)
	return nil
}

func (f *fakeRefresh) BuscarPorHash(_ *gorm.DB, hash string) (*RefreshToken, error) {
	for _, rt := range f.tokens {
		if rt.Hash == hash {
			cp := *rt
			if f.leituraAntiga {
				cp.RevokedAt = nil
			}
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRefresh) Revogar(_ *gorm.DB, id uint, quando time.Time) error {
	for _, rt := range f.tokens {
		if rt.ID == id && rt.RevokedAt == nil {
			q := quando
			rt.RevokedAt = &q
			return nil
		}
	}
	return ErrRefreshReusado
}

func (f *fakeRefresh) RevogarFamilia(_ *gorm.DB, familyID string, quando time.Time) error {
	for _, rt := range f.tokens {
		if rt.FamilyID == familyID && rt.RevokedAt == nil {
			q := quando
			rt.RevokedAt = &q
		}
	}
	return nil
}

var agoraFixa = time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

func newTestEmissor(t *testing.T) *Emissor {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	e, err := NovoEmissor(priv, "kid-1", "api-cuotas", "painel")
	if err != nil {
		t.Fatalf("NovoEmissor: %v", err)
	}
	e.agora = func() time.Time { return agoraFixa }
	return e
}

func newTestHandler(t *testing.T) (*Handler, *fakeRefresh) {
	t.Helper()
	hash, err := utils.HashSenha("segredo")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	refresh := &fakeRefresh{}
	h := &Handler{
		Emissor: newTestEmissor(t),
		Usuarios: &fakeUsuarios{porID: map[uint]*usuario.Usuario{
			1: {ID: 1, Username: "admin", Senha: hash},
		}},
		Refresh: refresh,
		Agora:   func() time.Time { return agoraFixa },
		Transacao: func(fn func(tx *gorm.DB) error) error {
			return fn(nil)
		},
	}
	return h, refresh
}

func login(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.Login(w, req)
	return w
}

func refreshCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == RefreshCookie {
			return c
		}
	}
	t.Fatalf("refresh cookie not set")
	return nil
}

func TestEmissor_RoundTrip(t *testing.T) {
	e := newTestEmissor(t)
	tok, err := e.GerarAccessToken(7, "admin")
	if err != nil {
		t.Fatalf("GerarAccessToken: %v", err)
	}
	c, err := e.Validar(tok)
	if err != nil {
		t.Fatalf("Validar: %v", err)
	}
	if c.UserID != 7 || c.Username != "admin" || c.ID == "" {
		t.Fatalf("unexpected claims: %+v", c)
	}
}

func TestEmissor_Rejects(t *testing.T) {
	e := newTestEmissor(t)
	tok, _ := e.GerarAccessToken(7, "admin")

	t.Run("expired", func(t *testing.T) {
		e.agora = func() time.Time { return agoraFixa.Add(AccessTTL + time.Minute) }
		defer func() { e.agora = func() time.Time { return agoraFixa } }()
		if _, err := e.Validar(tok); err == nil {
			t.Fatalf("expected expired token to fail")
		}
	})

	t.Run("other key", func(t *testing.T) {
		outro := newTestEmissor(t)
		if _, err := outro.Validar(tok); err == nil {
			t.Fatalf("expected signature failure")
		}
	})

	t.Run("wrong audience", func(t *testing.T) {
		outro, _ := NovoEmissor(e.priv, "kid-1", "api-cuotas", "outro")
		outro.agora = e.agora
		if _, err := outro.Validar(tok); err == nil {
			t.Fatalf("expected audience failure")
		}
	})

	t.Run("hs256", func(t *testing.T) {
		claims := &Claims{UserID: 7, RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "api-cuotas",
			Audience:  []string{"painel"},
			ExpiresAt: jwt.NewNumericDate(agoraFixa.Add(time.Hour)),
		}}
		raw := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		raw.Header["kid"] = "kid-1"
		s, _ := raw.SignedString([]byte("x"))
		if _, err := e.Validar(s); err == nil {
			t.Fatalf("expected HS256 to be rejected")
		}
	})
}

func TestHandler_Login(t *testing.T) {
	h, refresh := newTestHandler(t)

	if w := login(t, h, `{"username":"admin","password":"errada"}`); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if w := login(t, h, `{"username":"ninguem","password":"segredo"}`); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if w := login(t, h, `{"username":""}`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	w := login(t, h, `{"username":"admin","password":"segredo"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp tokenResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.TokenType != "Bearer" || resp.ExpiresIn != int(AccessTTL.Seconds()) {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if _, err := h.Emissor.Validar(resp.AccessToken); err != nil {
		t.Fatalf("issued token does not validate: %v", err)
	}
	c := refreshCookie(t, w)
	if !c.HttpOnly || c.Path != "/auth" {
		t.Fatalf("unexpected cookie: %+v", c)
	}
	if len(refresh.tokens) != 1 || refresh.tokens[0].Hash != hashRaw(c.Value) {
		t.Fatalf("refresh token should be stored hashed")
	}
	if strings.Contains(w.Body.String(), "segredo") {
		t.Fatalf("password leaked in response")
	}
}

func TestHandler_RefreshRotation(t *testing.T) {
	h, refresh := newTestHandler(t)
	primeiro := refreshCookie(t, login(t, h, `{"username":"admin","password":"segredo"}`))

	doRefresh := func(c *http.Cookie) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
		if c != nil {
			req.AddCookie(c)
		}
		w := httptest.NewRecorder()
		h.RefreshHTTP(w, req)
		return w
	}

	if w := doRefresh(nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without cookie, got %d", w.Code)
	}

	w := doRefresh(primeiro)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	segundo := refreshCookie(t, w)
	if segundo.Value == primeiro.Value {
		t.Fatalf("refresh token was not rotated")
	}
	if refresh.tokens[0].RevokedAt == nil {
		t.Fatalf("old token should be revoked")
	}
	if refresh.tokens[1].FamilyID != refresh.tokens[0].FamilyID {
		t.Fatalf("rotated token must stay in the same family")
	}

	// reapresentar o primeiro derruba a família
	if w := doRefresh(primeiro); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 on reuse, got %d", w.Code)
	}
	if refresh.tokens[1].RevokedAt == nil {
		t.Fatalf("reuse must revoke the whole family")
	}
	if w := doRefresh(segundo); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after family revocation, got %d", w.Code)
	}
}

func TestHandler_RefreshConcurrentRotation(t *testing.T) {
	h, refresh := newTestHandler(t)
	primeiro := refreshCookie(t, login(t, h, `{"username":"admin","password":"segredo"}`))

	doRefresh := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
		req.AddCookie(primeiro)
		w := httptest.NewRecorder()
		h.RefreshHTTP(w, req)
		return w
	}

	if w := doRefresh(); w.Code != http.StatusOK {
		t.Fatalf("expected 200 on first rotation, got %d", w.Code)
	}

	// a segunda requisição leu o token antes da primeira revogá-lo
	refresh.leituraAntiga = true
	w := doRefresh()
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for the losing rotation, got %d", w.Code)
	}
	if len(refresh.tokens) != 2 {
		t.Fatalf("losing rotation must not issue a token, have %d", len(refresh.tokens))
	}
	if refresh.tokens[1].RevokedAt == nil {
		t.Fatalf("token issued by the winning rotation must be revoked with its family")
	}
	if got := refreshCookie(t, w); got.MaxAge >= 0 {
		t.Fatalf("cookie should be cleared, got %+v", got)
	}
}

func TestHandler_RefreshExpired(t *testing.T) {
	h, _ := newTestHandler(t)
	c := refreshCookie(t, login(t, h, `{"username":"admin","password":"segredo"}`))

	h.Agora = func() time.Time { return agoraFixa.Add(RefreshTTL + time.Hour) }
	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	req.AddCookie(c)
	w := httptest.NewRecorder()
	h.RefreshHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestHandler_Logout(t *testing.T) {
	h, refresh := newTestHandler(t)
	c := refreshCookie(t, login(t, h, `{"username":"admin","password":"segredo"}`))

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(c)
	w := httptest.NewRecorder()
	h.Logout(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if refresh.tokens[0].RevokedAt == nil {
		t.Fatalf("logout should revoke the refresh token")
	}
	if got := refreshCookie(t, w); got.MaxAge >= 0 {
		t.Fatalf("cookie should be cleared, got %+v", got)
	}
}

func TestAutenticador_Middleware(t *testing.T) {
	h, _ := newTestHandler(t)
	a := &Autenticador{Emissor: h.Emissor, Usuarios: h.Usuarios}
	protegido := a.Middleware(http.HandlerFunc(h.Me))

	call := func(authz string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if authz != "" {
			req.Header.Set("Authorization", authz)
		}
		w := httptest.NewRecorder()
		protegido.ServeHTTP(w, req)
		return w
	}

	if w := call(""); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}
	if w := call("Bearer lixo"); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for garbage token, got %d", w.Code)
	}

	fantasma, _ := h.Emissor.GerarAccessToken(99, "fantasma")
	if w := call("Bearer " + fantasma); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown user, got %d", w.Code)
	}

	tok, _ := h.Emissor.GerarAccessToken(1, "admin")
	w := call("Bearer " + tok)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var me struct {
		ID       uint   `json:"id"`
		Username string `json:"username"`
	}
	if err := json.NewDecoder(w.Body).Decode(&me); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if me.ID != 1 || me.Username != "admin" {
		t.Fatalf("unexpected user: %+v", me)
	}
}

func TestAutenticador_PreflightPassesThrough(t *testing.T) {
	a := &Autenticador{}
	chamado := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { chamado = true })
	req := httptest.NewRequest(http.MethodOptions, "/clientes", nil)
	a.Middleware(next).ServeHTTP(httptest.NewRecorder(), req)
	if !chamado {
		t.Fatalf("OPTIONS should reach the next handler")
	}
}

func TestEmissor_JWKS(t *testing.T) {
	e := newTestEmissor(t)
	w := httptest.NewRecorder()
	e.JWKSHandler(w, httptest.NewRequest(http.MethodGet, "/.well-known/jwks.json", nil))

	var body struct {
		Keys []jwk `json:"keys"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Keys) != 1 || body.Keys[0].Kid != "kid-1" || body.Keys[0].E != "AQAB" {
		t.Fatalf("unexpected jwks: %+v", body)
	}
}
