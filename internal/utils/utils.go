package utils

import (
	"crypto/rand"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

const alfabetoSenha = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GerarSenhaTemporaria gera a senha impressa pelo seed quando ADMIN_PASSWORD não vem.
func GerarSenhaTemporaria() (string, error) {
	result := make([]byte, 12)
	for i := range result {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(alfabetoSenha))))
		if err != nil {
			return "", err
		}
		result[i] = alfabetoSenha[num.Int64()]
	}
	return string(result), nil
}

// HashSenha devolve o hash bcrypt guardado em usuarios.senha.
func HashSenha(senha string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(senha), bcrypt.DefaultCost)
	return string(hash), err
}

// CheckSenha é usado no login; qualquer erro do bcrypt conta como senha errada.
func CheckSenha(hash, senha string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(senha)) == nil
}
