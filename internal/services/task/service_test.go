package task

import (
	"context"
	"database/sql"
	"errors"
	"os"
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

	if err := createTestSchema(db); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return NewService(database.NewRepository(db))
}

// createTestSchema creates the minimal schema needed for task service tests
func createTestSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS tasks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		description TEXT,
		assignedDate TEXT NOT NULL,
		dueDate TEXT NOT NULL,
		isComplete TEXT NOT NULL DEFAULT 'No',
		user TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS user (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		email TEXT NOT NULL,
		isAdmin TEXT NOT NULL DEFAULT 'No'
	);

	INSERT INTO user (username, password, email, isAdmin)
	VALUES ('alice', 'pw', 'alice@test.com', 'No');
	`
	_, err := db.Exec(schema)
	return err
}

func TestAddTaskStampsDefaults(t *testing.T) {
	svc := setupService(t)

	created, err := svc.AddTask(context.Background(), AddTaskRequest{
		Title:       "Ship report",
		Description: "Q3 numbers",
		DueDate:     "31/12/2099",
		Assignee:    "alice",
	})
	if err != nil {
		t.Fatalf("Failed to add task: %v", err)
	}
	if created.IsComplete != models.FlagNo {
		t.Errorf("New task must start incomplete, got %q", created.IsComplete)
	}
	if created.AssignedDate == "" {
		t.Error("Assigned date should be stamped at creation")
	}
}

func TestAddTaskExplicitAssignedDate(t *testing.T) {
	svc := setupService(t)

	created, err := svc.AddTask(context.Background(), AddTaskRequest{
		Title:        "Ship report",
		Description:  "Q3 numbers",
		AssignedDate: "01/03/2024",
		DueDate:      "15/03/2024",
		Assignee:     "alice",
	})
	if err != nil {
		t.Fatalf("Failed to add task: %v", err)
	}
	if created.AssignedDate != "01/03/2024" {
		t.Errorf("Expected assigned date 01/03/2024, got %q", created.AssignedDate)
	}

	got, err := svc.GetTask(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Failed to get task: %v", err)
	}
	if got.IsComplete != models.FlagNo || got.AssignedDate != "01/03/2024" {
		t.Errorf("Stored record mismatch: %+v", got)
	}
}

func TestAddTaskValidation(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		req     AddTaskRequest
		wantErr error
	}{
		{
			name:    "empty title",
			req:     AddTaskRequest{DueDate: "02/01/2024", Assignee: "alice"},
			wantErr: ErrEmptyTitle,
		},
		{
			name:    "empty assignee",
			req:     AddTaskRequest{Title: "T", DueDate: "02/01/2024"},
			wantErr: ErrEmptyAssignee,
		},
		{
			name: "due before assigned",
			req: AddTaskRequest{
				Title: "T", AssignedDate: "15/03/2024", DueDate: "01/03/2024", Assignee: "alice",
			},
			wantErr: ErrDueBeforeAssigned,
		},
		{
			name: "bad due date",
			req: AddTaskRequest{
				Title: "T", DueDate: "2024-03-15", Assignee: "alice",
			},
			wantErr: ErrInvalidDate,
		},
		{
			name: "unknown assignee",
			req: AddTaskRequest{
				Title: "T", DueDate: "31/12/2099", Assignee: "nobody",
			},
			wantErr: ErrUnknownAssignee,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.AddTask(ctx, tt.req); !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	count, _ := svc.CountTasks(ctx)
	if count != 0 {
		t.Errorf("Rejected adds must not store rows, got %d", count)
	}
}

func TestAddTaskDueEqualsAssigned(t *testing.T) {
	svc := setupService(t)

	// the boundary is inclusive
	if _, err := svc.AddTask(context.Background(), AddTaskRequest{
		Title: "Same day", AssignedDate: "01/03/2024", DueDate: "01/03/2024", Assignee: "alice",
	}); err != nil {
		t.Fatalf("Due date equal to assigned date is valid: %v", err)
	}
}

func TestUpdateTaskValidatesAgainstStoredAssignedDate(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	created, err := svc.AddTask(ctx, AddTaskRequest{
		Title: "T", AssignedDate: "01/03/2024", DueDate: "15/03/2024", Assignee: "alice",
	})
	if err != nil {
		t.Fatalf("Failed to add task: %v", err)
	}

	_, err = svc.UpdateTask(ctx, UpdateTaskRequest{
		TaskID: created.ID, Title: "T", DueDate: "28/02/2024", Assignee: "alice",
	})
	if !errors.Is(err, ErrDueBeforeAssigned) {
		t.Errorf("Expected ErrDueBeforeAssigned, got %v", err)
	}

	changed, err := svc.UpdateTask(ctx, UpdateTaskRequest{
		TaskID: created.ID, Title: "T2", Description: "d", DueDate: "20/03/2024", Assignee: "alice",
	})
	if err != nil {
		t.Fatalf("Valid update failed: %v", err)
	}
	if !changed {
		t.Error("Expected changed=true")
	}
}

func TestUpdateTaskMissingReportsFalse(t *testing.T) {
	svc := setupService(t)

	changed, err := svc.UpdateTask(context.Background(), UpdateTaskRequest{
		TaskID: 999, Title: "T", DueDate: "31/12/2099", Assignee: "alice",
	})
	if err != nil {
		t.Fatalf("Missing task is not an error: %v", err)
	}
	if changed {
		t.Error("Expected changed=false for missing task")
	}
}

func TestUpdateCompletedTaskAllowed(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	created, err := svc.AddTask(ctx, AddTaskRequest{
		Title: "T", AssignedDate: "01/03/2024", DueDate: "15/03/2024", Assignee: "alice",
	})
	if err != nil {
		t.Fatalf("Failed to add task: %v", err)
	}
	if _, err := svc.MarkComplete(ctx, created.ID); err != nil {
		t.Fatalf("Failed to mark complete: %v", err)
	}

	// completion never locks a record
	changed, err := svc.UpdateTask(ctx, UpdateTaskRequest{
		TaskID: created.ID, Title: "Renamed", DueDate: "20/03/2024", Assignee: "alice",
	})
	if err != nil {
		t.Fatalf("Updating a completed task must be allowed: %v", err)
	}
	if !changed {
		t.Error("Expected changed=true")
	}

	got, _ := svc.GetTask(ctx, created.ID)
	if got.IsComplete != models.FlagYes {
		t.Errorf("Update must not reset completion, got %q", got.IsComplete)
	}
}

func TestListOperationsNeverReturnNil(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	lists := map[string]func() ([]*models.Task, error){
		"all":       func() ([]*models.Task, error) { return svc.ViewAllTasks(ctx) },
		"mine":      func() ([]*models.Task, error) { return svc.GetMyTasks(ctx, "alice") },
		"completed": func() ([]*models.Task, error) { return svc.CompletedTasks(ctx) },
		"overdue":   func() ([]*models.Task, error) { return svc.OverdueTasks(ctx) },
	}
	for name, fn := range lists {
		tasks, err := fn()
		if err != nil {
			t.Fatalf("%s failed: %v", name, err)
		}
		if tasks == nil {
			t.Errorf("%s returned nil instead of an empty slice", name)
		}
		if len(tasks) != 0 {
			t.Errorf("%s should be empty, got %d", name, len(tasks))
		}
	}
}

func TestImportExportTasksThroughFiles(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	dir := t.TempDir()

	if _, err := svc.AddTask(ctx, AddTaskRequest{
		Title: "One", AssignedDate: "01/01/2024", DueDate: "02/01/2024", Assignee: "alice",
	}); err != nil {
		t.Fatalf("Failed to add task: %v", err)
	}

	path := filepath.Join(dir, "tasks.txt")
	count, err := svc.ExportTasks(ctx, path)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("Expected 1 row exported, got %d", count)
	}

	// importing the export back inserts nothing new
	res, err := svc.ImportTasks(ctx, path)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if res.Inserted != 0 || res.Skipped != 1 {
		t.Errorf("Expected a no-op reimport, got %+v", res)
	}

	if _, err := svc.ImportTasks(ctx, filepath.Join(dir, "missing.txt")); err == nil {
		t.Error("Importing a missing file should fail")
	}

	// export overwrites the destination
	if err := os.WriteFile(path, []byte("stale content\n"), 0o644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	if _, err := svc.ExportTasks(ctx, path); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read export: %v", err)
	}
	if string(data) == "stale content\n" {
		t.Error("Export must overwrite the destination")
	}
}
