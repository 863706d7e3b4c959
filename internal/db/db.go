package db

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrEmptyDSN is returned when the postgres backend is selected without DB_DSN.
var ErrEmptyDSN = errors.New("DB_DSN is empty (check your .env)")

// Open connects to postgres. Schema migration is left to the store.
func Open(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, ErrEmptyDSN
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	zap.S().Infow("database ready", "dialect", db.Dialector.Name())
	return db, nil
}
