package testutil

import (
	"testing"

	"pdfmgr/internal/database"
	"pdfmgr/internal/volume"
)

// NewTestHistory creates a new in-memory SQLite history with migrations applied.
// The database is automatically closed when the test completes.
func NewTestHistory(t *testing.T) volume.History {
	t.Helper()

	db, err := database.NewSQLiteHistory(":memory:")
	if err != nil {
		t.Fatalf("failed to open history database: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}
