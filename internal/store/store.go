// Package store implements the inventory and ledger repositories on top of
// GORM with a SQLite datastore.
package store

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/happyloop/vendbot/internal/domain"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open connects to the SQLite database at dsn and runs schema migration for
// the vending tables.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("Open: connecting to %q: %w", dsn, err)
	}

	if err := db.AutoMigrate(&domain.Product{}, &domain.Transaction{}); err != nil {
		return nil, fmt.Errorf("Open: migrating schema: %w", err)
	}

	return db, nil
}
