package task

import (
	"context"
	"fmt"
	"os"
	"time"

	"taskman/internal/database"
	"taskman/internal/dates"
	"taskman/internal/models"
)

// Service defines all task-related business operations
type Service interface {
	// Read operations
	GetTask(ctx context.Context, taskID int) (*models.Task, error)
	GetMyTasks(ctx context.Context, username string) ([]*models.Task, error)
	ViewAllTasks(ctx context.Context) ([]*models.Task, error)
	CompletedTasks(ctx context.Context) ([]*models.Task, error)
	OverdueTasks(ctx context.Context) ([]*models.Task, error)
	CountTasks(ctx context.Context) (int, error)

	// Write operations
	AddTask(ctx context.Context, req AddTaskRequest) (*models.Task, error)
	UpdateTask(ctx context.Context, req UpdateTaskRequest) (bool, error)
	MarkComplete(ctx context.Context, taskID int) (bool, error)
	DeleteTask(ctx context.Context, taskID int) (bool, error)

	// Bulk operations
	ImportTasks(ctx context.Context, path string) (database.ImportResult, error)
	ExportTasks(ctx context.Context, path string) (int, error)
}

// AddTaskRequest encapsulates all data needed to create a task.
// An empty AssignedDate means today.
type AddTaskRequest struct {
	Title        string
	Description  string
	AssignedDate string
	DueDate      string
	Assignee     string
}

// UpdateTaskRequest encapsulates all data needed to update a task. Every
// field replaces the stored value; the assigned date and completion state
// are not updatable.
type UpdateTaskRequest struct {
	TaskID      int
	Title       string
	Description string
	DueDate     string
	Assignee    string
}

// service implements Service interface
type service struct {
	repo database.DataStore
}

// NewService creates a new task service
func NewService(repo database.DataStore) Service {
	return &service{repo: repo}
}

// AddTask handles task creation. The assigned date is stamped at creation
// time unless the request carries one, the due date must not precede it,
// and the assignee must name an existing user. New tasks always start
// incomplete.
func (s *service) AddTask(ctx context.Context, req AddTaskRequest) (*models.Task, error) {
	if req.Title == "" {
		return nil, ErrEmptyTitle
	}
	if req.Assignee == "" {
		return nil, ErrEmptyAssignee
	}

	assignedDate := req.AssignedDate
	if assignedDate == "" {
		assignedDate = dates.Format(time.Now())
	}
	if _, err := dates.Parse(assignedDate); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}
	if _, err := dates.Parse(req.DueDate); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}

	early, err := dates.Before(req.DueDate, assignedDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}
	if early {
		return nil, ErrDueBeforeAssigned
	}

	assignee, err := s.repo.GetUserByUsername(ctx, req.Assignee)
	if err != nil {
		return nil, fmt.Errorf("failed to look up assignee: %w", err)
	}
	if assignee == nil {
		return nil, ErrUnknownAssignee
	}

	task, err := s.repo.CreateTask(ctx, req.Title, req.Description, assignedDate, req.DueDate, assignee.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return task, nil
}

// GetTask retrieves a single task. A missing task is (nil, nil).
func (s *service) GetTask(ctx context.Context, taskID int) (*models.Task, error) {
	if taskID <= 0 {
		return nil, ErrInvalidTaskID
	}
	return s.repo.GetTaskByID(ctx, taskID)
}

// GetMyTasks retrieves the tasks assigned to a username.
func (s *service) GetMyTasks(ctx context.Context, username string) ([]*models.Task, error) {
	tasks, err := s.repo.GetTasksByUser(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get tasks for %q: %w", username, err)
	}
	return nonNil(tasks), nil
}

// ViewAllTasks retrieves every task.
func (s *service) ViewAllTasks(ctx context.Context) ([]*models.Task, error) {
	tasks, err := s.repo.GetAllTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get all tasks: %w", err)
	}
	return nonNil(tasks), nil
}

// CompletedTasks retrieves every completed task.
func (s *service) CompletedTasks(ctx context.Context) ([]*models.Task, error) {
	tasks, err := s.repo.GetCompletedTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get completed tasks: %w", err)
	}
	return nonNil(tasks), nil
}

// OverdueTasks retrieves incomplete tasks due before today.
func (s *service) OverdueTasks(ctx context.Context) ([]*models.Task, error) {
	tasks, err := s.repo.GetOverdueTasks(ctx, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to get overdue tasks: %w", err)
	}
	return nonNil(tasks), nil
}

// CountTasks returns the total number of tasks.
func (s *service) CountTasks(ctx context.Context) (int, error) {
	return s.repo.CountTasks(ctx)
}

// UpdateTask replaces a task's title, description, due date and assignee.
// The due date is validated against the stored assigned date. Completed
// tasks stay updatable; completion never locks a record. An unknown id
// reports (false, nil).
func (s *service) UpdateTask(ctx context.Context, req UpdateTaskRequest) (bool, error) {
	if req.TaskID <= 0 {
		return false, ErrInvalidTaskID
	}
	if req.Title == "" {
		return false, ErrEmptyTitle
	}

	existing, err := s.repo.GetTaskByID(ctx, req.TaskID)
	if err != nil {
		return false, fmt.Errorf("failed to get task: %w", err)
	}
	if existing == nil {
		return false, nil
	}

	if _, err := dates.Parse(req.DueDate); err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}
	early, err := dates.Before(req.DueDate, existing.AssignedDate)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}
	if early {
		return false, ErrDueBeforeAssigned
	}

	assignee, err := s.repo.GetUserByUsername(ctx, req.Assignee)
	if err != nil {
		return false, fmt.Errorf("failed to look up assignee: %w", err)
	}
	if assignee == nil {
		return false, ErrUnknownAssignee
	}

	return s.repo.UpdateTask(ctx, req.TaskID, req.Title, req.Description, req.DueDate, assignee.Username)
}

// MarkComplete marks a task complete. Marking an already-complete task is a
// harmless no-op that still reports success.
func (s *service) MarkComplete(ctx context.Context, taskID int) (bool, error) {
	if taskID <= 0 {
		return false, ErrInvalidTaskID
	}
	return s.repo.MarkTaskComplete(ctx, taskID)
}

// DeleteTask removes a task.
func (s *service) DeleteTask(ctx context.Context, taskID int) (bool, error) {
	if taskID <= 0 {
		return false, ErrInvalidTaskID
	}
	return s.repo.DeleteTask(ctx, taskID)
}

// ImportTasks bulk-loads tasks from a delimited text file.
func (s *service) ImportTasks(ctx context.Context, path string) (database.ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return database.ImportResult{}, fmt.Errorf("failed to open import file: %w", err)
	}
	defer f.Close()

	return s.repo.ImportTasksFrom(ctx, f)
}

// ExportTasks writes every task to a delimited text file, replacing any
// existing file at path.
func (s *service) ExportTasks(ctx context.Context, path string) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create export file: %w", err)
	}

	count, err := s.repo.ExportTasksTo(ctx, f)
	if closeErr := f.Close(); err == nil && closeErr != nil {
		return 0, fmt.Errorf("failed to close export file: %w", closeErr)
	}
	return count, err
}

// nonNil guarantees list results are an empty slice rather than nil.
func nonNil(tasks []*models.Task) []*models.Task {
	if tasks == nil {
		return []*models.Task{}
	}
	return tasks
}
