package database

import (
	"context"
	"database/sql"
	"io"
	"time"

	"taskman/internal/models"
)

// Repository provides a unified interface to all data operations.
// It composes the domain-specific repositories using struct embedding.
type Repository struct {
	*TaskRepo
	*UserRepo
}

// NewRepository creates a new Repository instance wrapping the given database connection.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		TaskRepo: &TaskRepo{db: db},
		UserRepo: &UserRepo{db: db},
	}
}

// Wrapper methods for TaskRepo

func (r *Repository) CreateTask(ctx context.Context, title, description, assignedDate, dueDate, user string) (*models.Task, error) {
	return r.TaskRepo.Create(ctx, title, description, assignedDate, dueDate, user)
}

func (r *Repository) GetTaskByID(ctx context.Context, id int) (*models.Task, error) {
	return r.TaskRepo.GetByID(ctx, id)
}

func (r *Repository) GetTasksByUser(ctx context.Context, username string) ([]*models.Task, error) {
	return r.TaskRepo.GetByUser(ctx, username)
}

func (r *Repository) GetAllTasks(ctx context.Context) ([]*models.Task, error) {
	return r.TaskRepo.GetAll(ctx)
}

func (r *Repository) GetCompletedTasks(ctx context.Context) ([]*models.Task, error) {
	return r.TaskRepo.GetCompleted(ctx)
}

func (r *Repository) GetOverdueTasks(ctx context.Context, now time.Time) ([]*models.Task, error) {
	return r.TaskRepo.GetOverdue(ctx, now)
}

func (r *Repository) UpdateTask(ctx context.Context, id int, title, description, dueDate, user string) (bool, error) {
	return r.TaskRepo.Update(ctx, id, title, description, dueDate, user)
}

func (r *Repository) MarkTaskComplete(ctx context.Context, id int) (bool, error) {
	return r.TaskRepo.MarkComplete(ctx, id)
}

func (r *Repository) DeleteTask(ctx context.Context, id int) (bool, error) {
	return r.TaskRepo.Delete(ctx, id)
}

func (r *Repository) CountTasks(ctx context.Context) (int, error) {
	return r.TaskRepo.Count(ctx)
}

func (r *Repository) ImportTasksFrom(ctx context.Context, src io.Reader) (ImportResult, error) {
	return r.TaskRepo.ImportFrom(ctx, src)
}

func (r *Repository) ExportTasksTo(ctx context.Context, dst io.Writer) (int, error) {
	return r.TaskRepo.ExportTo(ctx, dst)
}

// Wrapper methods for UserRepo

func (r *Repository) Login(ctx context.Context, username, password string) (*models.AuthResult, error) {
	return r.UserRepo.Login(ctx, username, password)
}

func (r *Repository) CreateUser(ctx context.Context, username, password, email string) (*models.User, error) {
	return r.UserRepo.Create(ctx, username, password, email)
}

func (r *Repository) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	return r.UserRepo.GetByID(ctx, id)
}

func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.UserRepo.GetByUsername(ctx, username)
}

func (r *Repository) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	return r.UserRepo.GetAll(ctx)
}

func (r *Repository) UpdateUser(ctx context.Context, id int, username, password, email string) (bool, error) {
	return r.UserRepo.Update(ctx, id, username, password, email)
}

func (r *Repository) PromoteUserToAdmin(ctx context.Context, id int) (bool, error) {
	return r.UserRepo.PromoteToAdmin(ctx, id)
}

func (r *Repository) DeleteUser(ctx context.Context, id int) (bool, error) {
	return r.UserRepo.Delete(ctx, id)
}

func (r *Repository) CountUsers(ctx context.Context) (int, error) {
	return r.UserRepo.Count(ctx)
}

func (r *Repository) ImportUsersFrom(ctx context.Context, src io.Reader) (ImportResult, error) {
	return r.UserRepo.ImportFrom(ctx, src)
}

func (r *Repository) ExportUsersTo(ctx context.Context, dst io.Writer) (int, error) {
	return r.UserRepo.ExportTo(ctx, dst)
}
