package repositories

import (
	"path/filepath"
	"testing"

	"github.com/minhtc/folio/internal/db"
	"github.com/minhtc/folio/internal/models"
)

// newTestDB opens a throwaway sqlite database with the full schema migrated
func newTestDB(t *testing.T) *db.DB {
	t.Helper()

	database, err := db.Connect(&db.Config{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	err = database.AutoMigrate(
		&models.User{},
		&models.Holding{},
		&models.Transaction{},
		&models.Snapshot{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return database
}
