// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/fastygo/tasktracker/internal/infrastructure/sqlite"
	"github.com/fastygo/tasktracker/repository"
	sqliterepo "github.com/fastygo/tasktracker/repository/sqlite"
)

// NewSQLiteDB opens a migrated in-memory database that is closed when the test ends.
func NewSQLiteDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := sqlite.Open(context.Background(), sqlite.MemoryPath, nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := sqlite.Migrate(db, nil); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return db
}

// NewStore returns repositories backed by a fresh in-memory database.
func NewStore(t *testing.T) *repository.Store {
	t.Helper()
	return sqliterepo.NewStore(NewSQLiteDB(t))
}
