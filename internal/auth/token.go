package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims do access token
type Claims struct {
	UserID   uint   `json:"userId"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Tempo de vida do access token
const AccessTTL = 15 * time.Minute

// GerarAccessToken gera um JWT RS256 com kid, iss, aud, iat, nbf e jti.
func (e *Emissor) GerarAccessToken(userID uint, username string) (string, error) {
	now := e.agora()

	claims := &Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    e.issuer,
			Audience:  []string{e.audience},
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(AccessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now.Add(-1 * time.Minute)),
			ID:        uuid.NewString(),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = e.kid
	return tok.SignedString(e.priv)
}

// Validar confere assinatura, kid, iss, aud e exp.
func (e *Emissor) Validar(tokenStr string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(e.issuer),
		jwt.WithAudience(e.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(e.agora),
	)
	tok, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		k, _ := t.Header["kid"].(string)
		if k == "" {
			return nil, errors.New("kid ausente")
		}
		if k != e.kid {
			return nil, errors.New("kid desconhecido")
		}
		return e.PublicKey(), nil
	})
	if err != nil {
		return nil, fmt.Errorf("token inválido: %w", err)
	}

	c, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, errors.New("claims inválidas")
	}
	if c.UserID == 0 {
		return nil, errors.New("token sem usuário")
	}
	return c, nil
}
