package auth

import (
	"encoding/base64"
	"math/big"
	"net/http"

	"github.com/academia-fuerza/api-cuotas/internal/utils"
)

type jwk struct {
	Kty string `json:"kty"`
	Alg string `json:"alg"`
	Use string `json:"use"`
	Kid string `json:"kid"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// GET /.well-known/jwks.json
func (e *Emissor) JWKSHandler(w http.ResponseWriter, r *http.Request) {
	pub := e.PublicKey()

	resp := struct {
		Keys []jwk `json:"keys"`
	}{
		Keys: []jwk{{
			Kty: "RSA",
			Alg: "RS256",
			Use: "sig",
			Kid: e.kid,
			N:   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
			E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
		}},
	}

	utils.JSON(w, http.StatusOK, resp)
}
