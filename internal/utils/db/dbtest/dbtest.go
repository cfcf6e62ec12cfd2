// Package dbtest abre um banco SQLite em memória para os testes de repository.
package dbtest

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Abrir cria um banco vazio, migra os modelos e fecha tudo ao fim do teste.
// Uma única conexão garante que todas as sessões vejam o mesmo banco.
func Abrir(t testing.TB, modelos ...any) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("abrir sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(modelos...); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	return db
}
