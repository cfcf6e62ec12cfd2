package auth

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"time"
)

// Emissor assina e valida access tokens RS256 com uma única chave ativa.
type Emissor struct {
	priv     *rsa.PrivateKey
	kid      string
	issuer   string
	audience string
	agora    func() time.Time
}

func NovoEmissor(priv *rsa.PrivateKey, kid, issuer, audience string) (*Emissor, error) {
	if priv == nil {
		return nil, errors.New("chave privada ausente")
	}
	if kid == "" || issuer == "" || audience == "" {
		return nil, errors.New("kid, issuer e audience são obrigatórios")
	}
	return &Emissor{
		priv:     priv,
		kid:      kid,
		issuer:   issuer,
		audience: audience,
		agora:    time.Now,
	}, nil
}

// NovoEmissorDoAmbiente lê AUTH_RSA_PRIVATE_PATH, AUTH_KID, AUTH_ISSUER e AUTH_AUDIENCE.
func NovoEmissorDoAmbiente() (*Emissor, error) {
	path := os.Getenv("AUTH_RSA_PRIVATE_PATH")
	kid := os.Getenv("AUTH_KID")
	issuer := os.Getenv("AUTH_ISSUER")
	audience := os.Getenv("AUTH_AUDIENCE")

	if path == "" || kid == "" || issuer == "" || audience == "" {
		return nil, errors.New("missing envs: AUTH_RSA_PRIVATE_PATH/AUTH_KID/AUTH_ISSUER/AUTH_AUDIENCE")
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}
	priv, err := ParsePrivateKeyPEM(b)
	if err != nil {
		return nil, err
	}
	return NovoEmissor(priv, kid, issuer, audience)
}

// ParsePrivateKeyPEM aceita PKCS#1 ou PKCS#8.
func ParsePrivateKeyPEM(b []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(b)
	if block == nil {
		return nil, errors.New("pem decode private key failed")
	}

	if k, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return k, nil
	}
	k8, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	k, ok := k8.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New("private key is not RSA")
	}
	return k, nil
}

func (e *Emissor) KID() string {
	return e.kid
}

func (e *Emissor) PublicKey() *rsa.PublicKey {
	return &e.priv.PublicKey
}
