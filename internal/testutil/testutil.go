package testutil

import (
	"testing"

	"github.com/pratik-mahalle/costengine/internal/repository/postgres"
	"github.com/pratik-mahalle/costengine/migrations"
)

// NewTestDB creates an in-memory SQLite database with every migration applied
func NewTestDB(t *testing.T) *postgres.DB {
	t.Helper()

	db, err := postgres.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if _, err := postgres.RunMigrations(db, migrations.Files); err != nil {
		db.Close()
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

// CleanupDB closes the test database
func CleanupDB(db *postgres.DB) {
	if db != nil {
		db.Close()
	}
}
