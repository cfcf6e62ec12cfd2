package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func dsn(host string, port uint, dbname, username, password string, ssl bool) string {
	var sslMode string
	if !ssl {
		sslMode = " sslmode=disable"
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d%s", host, username, password, dbname, port, sslMode)
}

func ConnectDataBase(host string, port uint, dbname, username, password string, ssl bool) (*gorm.DB, error) {
	database, err := gorm.Open(postgres.Open(dsn(host, port, dbname, username, password, ssl)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return nil, fmt.Errorf("conectar ao postgres em %s:%d: %w", host, port, err)
	}
	return database, nil
}
