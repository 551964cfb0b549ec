package user

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"taskman/internal/database"
	"taskman/internal/models"
	_ "modernc.org/sqlite"
)

// setupService creates an in-memory database with the schema the service
// needs and returns a service over a real repository.
func setupService(t *testing.T) Service {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	schema := `
	CREATE TABLE IF NOT EXISTS user (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		email TEXT NOT NULL,
		isAdmin TEXT NOT NULL DEFAULT 'No'
	);

	INSERT INTO user (username, password, email, isAdmin)
	VALUES ('admin', 'admin', 'test@test.com', 'Yes');
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return NewService(database.NewRepository(db))
}

func TestLoginRoleMapping(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	if _, err := svc.AddUser(ctx, "alice", "pw", "a@b.com"); err != nil {
		t.Fatalf("Failed to add user: %v", err)
	}

	auth, err := svc.Login(ctx, "admin", "admin")
	if err != nil {
		t.Fatalf("Admin login failed: %v", err)
	}
	if auth.Role != models.RoleAdmin {
		t.Errorf("Expected admin role, got %q", auth.Role)
	}

	auth, err = svc.Login(ctx, "alice", "pw")
	if err != nil {
		t.Fatalf("User login failed: %v", err)
	}
	if auth.Role != models.RoleUser {
		t.Errorf("Expected user role, got %q", auth.Role)
	}

	if _, err := svc.Login(ctx, "ghost", "pw"); !errors.Is(err, database.ErrUnknownUser) {
		t.Errorf("Expected ErrUnknownUser, got %v", err)
	}
	if _, err := svc.Login(ctx, "alice", "nope"); !errors.Is(err, database.ErrWrongPassword) {
		t.Errorf("Expected ErrWrongPassword, got %v", err)
	}
}

func TestAddUserValidation(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
		email    string
		wantErr  error
	}{
		{"empty username", "", "pw", "a@b.com", ErrEmptyUsername},
		{"empty password", "alice", "", "a@b.com", ErrEmptyPassword},
		{"email without at", "alice", "pw", "not-an-email", ErrInvalidEmail},
		{"email without dot in domain", "alice", "pw", "a@b", ErrInvalidEmail},
		{"email without local part", "alice", "pw", "@b.com", ErrInvalidEmail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.AddUser(ctx, tt.username, tt.password, tt.email); !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	created, err := svc.AddUser(ctx, "alice", "pw", "a@b.com")
	if err != nil {
		t.Fatalf("Valid add failed: %v", err)
	}
	if created.Admin() {
		t.Error("New users must not be admins")
	}
}

func TestAddUserDuplicateFails(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	if _, err := svc.AddUser(ctx, "alice", "pw", "a@b.com"); err != nil {
		t.Fatalf("Failed to add user: %v", err)
	}
	if _, err := svc.AddUser(ctx, "alice", "pw2", "c@d.com"); !errors.Is(err, database.ErrUsernameTaken) {
		t.Fatalf("Expected ErrUsernameTaken, got %v", err)
	}

	users, err := svc.ViewAllUsers(ctx)
	if err != nil {
		t.Fatalf("Failed to list users: %v", err)
	}
	for _, u := range users {
		if u.Username == "alice" && u.Email != "a@b.com" {
			t.Errorf("Failed add must not mutate existing row, email is %q", u.Email)
		}
	}
}

func TestAssigneeExists(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	if _, err := svc.AddUser(ctx, "alice", "pw", "a@b.com"); err != nil {
		t.Fatalf("Failed to add user: %v", err)
	}

	canonical, found, err := svc.AssigneeExists(ctx, "alice")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if !found || canonical != "alice" {
		t.Errorf("Expected alice to exist, got found=%v canonical=%q", found, canonical)
	}

	_, found, err = svc.AssigneeExists(ctx, "nobody")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if found {
		t.Error("Expected nobody to be missing")
	}
}

func TestUpdateUserValidation(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	created, err := svc.AddUser(ctx, "alice", "pw", "a@b.com")
	if err != nil {
		t.Fatalf("Failed to add user: %v", err)
	}

	_, err = svc.UpdateUser(ctx, UpdateUserRequest{
		UserID: created.ID, Username: "alice", Password: "pw", Email: "broken",
	})
	if !errors.Is(err, ErrInvalidEmail) {
		t.Errorf("Expected ErrInvalidEmail, got %v", err)
	}

	// renaming into the seed admin's name collides
	_, err = svc.UpdateUser(ctx, UpdateUserRequest{
		UserID: created.ID, Username: "admin", Password: "pw", Email: "a@b.com",
	})
	if !errors.Is(err, database.ErrUsernameTaken) {
		t.Errorf("Expected ErrUsernameTaken, got %v", err)
	}

	changed, err := svc.UpdateUser(ctx, UpdateUserRequest{
		UserID: created.ID, Username: "alice2", Password: "pw2", Email: "a2@b.com",
	})
	if err != nil {
		t.Fatalf("Valid update failed: %v", err)
	}
	if !changed {
		t.Error("Expected changed=true")
	}
}

func TestPromoteAndDelete(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	created, err := svc.AddUser(ctx, "alice", "pw", "a@b.com")
	if err != nil {
		t.Fatalf("Failed to add user: %v", err)
	}

	changed, err := svc.PromoteToAdmin(ctx, created.ID)
	if err != nil {
		t.Fatalf("Promote failed: %v", err)
	}
	if !changed {
		t.Error("Expected changed=true")
	}
	got, _ := svc.GetUser(ctx, created.ID)
	if !got.Admin() {
		t.Error("Expected admin after promotion")
	}

	changed, err = svc.DeleteUser(ctx, created.ID)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if !changed {
		t.Error("Expected changed=true")
	}
	got, err = svc.GetUser(ctx, created.ID)
	if err != nil {
		t.Fatalf("Missing user is not an error: %v", err)
	}
	if got != nil {
		t.Error("Expected nil after delete")
	}
}

func TestImportExportUsersThroughFiles(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	dir := t.TempDir()

	if _, err := svc.AddUser(ctx, "alice", "pw", "a@b.com"); err != nil {
		t.Fatalf("Failed to add user: %v", err)
	}

	path := filepath.Join(dir, "users.txt")
	count, err := svc.ExportUsers(ctx, path)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if count != 2 { // admin + alice
		t.Fatalf("Expected 2 rows exported, got %d", count)
	}

	res, err := svc.ImportUsers(ctx, path)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if res.Inserted != 0 {
		t.Errorf("Reimport must insert nothing, got %d", res.Inserted)
	}
}
