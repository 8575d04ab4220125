package testhelpers

import (
	"fmt"
	"testing"

	"bordersense/surveillance/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var (
	openSQLite = func(dsn string) (*gorm.DB, error) {
		return gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	}
	migrateSchema = func(db *gorm.DB) error {
		return db.AutoMigrate(&models.AIModel{}, &models.Alert{}, &models.AlertComment{}, &models.Feedback{})
	}
	dropAlertTableFn = func(db *gorm.DB) error { return db.Migrator().DropTable(&models.Alert{}) }
)

// SetupTestDB creates an isolated in-memory SQLite database for tests.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := openSQLite(dsn)
	if err != nil {
		panic(fmt.Sprintf("failed to open test database: %v", err))
	}
	if err := migrateSchema(db); err != nil {
		panic(fmt.Sprintf("failed to migrate test database: %v", err))
	}

	// Shared-cache SQLite permits a single writer; one pooled connection keeps
	// concurrent test writers queued instead of failing with a lock error.
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}
	return db
}

// DropAlertTable removes the alerts table to force repository errors.
func DropAlertTable(t *testing.T, db *gorm.DB) {
	t.Helper()
	if err := dropAlertTableFn(db); err != nil {
		panic(fmt.Sprintf("failed to drop alert table: %v", err))
	}
}
