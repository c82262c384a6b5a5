package services

import (
	"database/sql"
	"testing"

	"github.com/buk/tasker-be/internal/database"
	"github.com/buk/tasker-be/internal/models"
)

// newTestDB opens an in-memory store with the real schema. The pool is
// pinned to one connection so every query sees the same memory
// database.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.New(":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	db.SetMaxOpenConns(1)
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func registerTestUser(t *testing.T, db *sql.DB, username string) models.User {
	t.Helper()
	user, err := NewUserService(db).Register(username, "hunter2")
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	return user
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func prioPtr(p models.Priority) *models.Priority { return &p }
