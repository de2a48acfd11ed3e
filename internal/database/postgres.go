package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// ConnectPostgres establishes a connection to the PostgreSQL database using the
// provided DSN. TranslateError is enabled so unique-constraint violations
// surface as gorm.ErrDuplicatedKey regardless of driver.
func ConnectPostgres(dsn string, maxOpenConns int) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn must not be empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}

	if maxOpenConns <= 0 {
		maxOpenConns = 10
	}
	sqlDB.SetMaxOpenConns(maxOpenConns)

	return db, nil
}
