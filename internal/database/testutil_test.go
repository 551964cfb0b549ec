package database

import (
	"context"
	"database/sql"
	"testing"

	"taskman/internal/models"
	_ "modernc.org/sqlite"
)

// setupTestDB creates an in-memory database and runs migrations.
// The seed administrator ("admin") is present afterwards.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := runMigrations(context.Background(), db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return db
}

// mustCreateUser inserts a plain (non-admin) user or fails the test.
func mustCreateUser(t *testing.T, repo *Repository, username string) *models.User {
	t.Helper()
	user, err := repo.CreateUser(context.Background(), username, "pw", username+"@test.com")
	if err != nil {
		t.Fatalf("Failed to create user %q: %v", username, err)
	}
	return user
}

// mustCreateTask inserts a task or fails the test.
func mustCreateTask(t *testing.T, repo *Repository, title, assigned, due, user string) *models.Task {
	t.Helper()
	task, err := repo.CreateTask(context.Background(), title, "desc", assigned, due, user)
	if err != nil {
		t.Fatalf("Failed to create task %q: %v", title, err)
	}
	return task
}
