// Package testutil provides test helpers for setting up in-memory databases,
// creating fixtures, and making assertions.
package testutil

import (
	"fmt"
	"testing"

	"pennywise/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// allModels is the list of all GORM models to auto-migrate in tests.
var allModels = []interface{}{
	&models.User{},
	&models.BudgetPeriod{},
	&models.BudgetCategory{},
	&models.Transaction{},
	&models.SavingsGoal{},
	&models.AuditLog{},
}

// SetupTestDB creates an in-memory SQLite database with all models migrated.
// Each call gets its own named database so tests cannot see each other's rows.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", nextID())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// TeardownTestDB closes the underlying database connection.
func TeardownTestDB(t *testing.T, db *gorm.DB) {
	t.Helper()

	sqlDB, err := db.DB()
	if err != nil {
		t.Errorf("failed to get underlying DB for teardown: %v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		t.Errorf("failed to close test database: %v", err)
	}
}
