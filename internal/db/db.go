package db

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"wordspark-backend/internal/config"
)

var database *gorm.DB

// InitDBFromConfig opens the Postgres connection described in config.xml and
// applies the pool settings. Fatal on failure; nothing works without the DB.
func InitDBFromConfig(cfg *config.APIConfig) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		cfg.DB.Host,
		cfg.DB.Port,
		cfg.DB.Username,
		cfg.DB.Password.Resolve(),
		cfg.DB.Names.WORDSPARK,
		cfg.DB.SSLMode,
		cfg.Context.TimeZone,
	)

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		log.Fatalf("failed to access underlying sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(cfg.DB.Pool.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DB.Pool.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.DB.Pool.ConnMaxLifetime) * time.Second)

	database = conn
}

// SetDB swaps the active connection. Used by repository tests to point the
// package at an in-memory database.
func SetDB(conn *gorm.DB) {
	database = conn
}

// GetDB returns the active connection.
func GetDB() *gorm.DB {
	return database
}
