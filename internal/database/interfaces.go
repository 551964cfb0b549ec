// Package database defines repository interfaces for data access
package database

import (
	"context"
	"io"
	"time"

	"taskman/internal/models"
)

// TaskStore covers every task-related data operation.
type TaskStore interface {
	CreateTask(ctx context.Context, title, description, assignedDate, dueDate, user string) (*models.Task, error)
	GetTaskByID(ctx context.Context, id int) (*models.Task, error)
	GetTasksByUser(ctx context.Context, username string) ([]*models.Task, error)
	GetAllTasks(ctx context.Context) ([]*models.Task, error)
	GetCompletedTasks(ctx context.Context) ([]*models.Task, error)
	GetOverdueTasks(ctx context.Context, now time.Time) ([]*models.Task, error)
	UpdateTask(ctx context.Context, id int, title, description, dueDate, user string) (bool, error)
	MarkTaskComplete(ctx context.Context, id int) (bool, error)
	DeleteTask(ctx context.Context, id int) (bool, error)
	CountTasks(ctx context.Context) (int, error)
	ImportTasksFrom(ctx context.Context, src io.Reader) (ImportResult, error)
	ExportTasksTo(ctx context.Context, dst io.Writer) (int, error)
}

// UserStore covers every user-related data operation.
type UserStore interface {
	Login(ctx context.Context, username, password string) (*models.AuthResult, error)
	CreateUser(ctx context.Context, username, password, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetAllUsers(ctx context.Context) ([]*models.User, error)
	UpdateUser(ctx context.Context, id int, username, password, email string) (bool, error)
	PromoteUserToAdmin(ctx context.Context, id int) (bool, error)
	DeleteUser(ctx context.Context, id int) (bool, error)
	CountUsers(ctx context.Context) (int, error)
	ImportUsersFrom(ctx context.Context, src io.Reader) (ImportResult, error)
	ExportUsersTo(ctx context.Context, dst io.Writer) (int, error)
}

// DataStore defines the unified interface for all data operations needed by
// the services. It is composed of the smaller domain-specific interfaces so
// consumers can depend on just the slice they use.
type DataStore interface {
	TaskStore
	UserStore
}
