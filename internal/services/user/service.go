package user

import (
	"context"
	"fmt"
	"os"

	"taskman/internal/database"
	"taskman/internal/models"
	"taskman/internal/validate"
)

// Service defines all user-related business operations
type Service interface {
	// Authentication
	Login(ctx context.Context, username, password string) (*models.AuthResult, error)

	// Read operations
	GetUser(ctx context.Context, userID int) (*models.User, error)
	ViewAllUsers(ctx context.Context) ([]*models.User, error)
	AssigneeExists(ctx context.Context, username string) (string, bool, error)
	CountUsers(ctx context.Context) (int, error)

	// Write operations
	AddUser(ctx context.Context, username, password, email string) (*models.User, error)
	UpdateUser(ctx context.Context, req UpdateUserRequest) (bool, error)
	PromoteToAdmin(ctx context.Context, userID int) (bool, error)
	DeleteUser(ctx context.Context, userID int) (bool, error)

	// Bulk operations
	ImportUsers(ctx context.Context, path string) (database.ImportResult, error)
	ExportUsers(ctx context.Context, path string) (int, error)
}

// UpdateUserRequest encapsulates all data needed to update a user. Every
// field replaces the stored value; the admin flag is only changed through
// PromoteToAdmin.
type UpdateUserRequest struct {
	UserID   int
	Username string
	Password string
	Email    string
}

// service implements Service interface
type service struct {
	repo database.DataStore
}

// NewService creates a new user service
func NewService(repo database.DataStore) Service {
	return &service{repo: repo}
}

// Login authenticates a username/password pair. Unknown users and wrong
// passwords come back as database.ErrUnknownUser and
// database.ErrWrongPassword respectively; the caller decides how to report
// each.
func (s *service) Login(ctx context.Context, username, password string) (*models.AuthResult, error) {
	return s.repo.Login(ctx, username, password)
}

// AddUser creates a new account with the admin flag forced to "No".
func (s *service) AddUser(ctx context.Context, username, password, email string) (*models.User, error) {
	if username == "" {
		return nil, ErrEmptyUsername
	}
	if password == "" {
		return nil, ErrEmptyPassword
	}
	if err := validate.Email(email); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}

	user, err := s.repo.CreateUser(ctx, username, password, email)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUser retrieves a single user. A missing user is (nil, nil).
func (s *service) GetUser(ctx context.Context, userID int) (*models.User, error) {
	if userID <= 0 {
		return nil, ErrInvalidUserID
	}
	return s.repo.GetUserByID(ctx, userID)
}

// ViewAllUsers retrieves every user.
func (s *service) ViewAllUsers(ctx context.Context) ([]*models.User, error) {
	users, err := s.repo.GetAllUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get all users: %w", err)
	}
	if users == nil {
		users = []*models.User{}
	}
	return users, nil
}

// AssigneeExists looks up a username and returns the canonical stored form.
// Used by the presentation layer to validate task assignment before a task
// is created or reassigned.
func (s *service) AssigneeExists(ctx context.Context, username string) (string, bool, error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return "", false, fmt.Errorf("failed to look up user %q: %w", username, err)
	}
	if user == nil {
		return "", false, nil
	}
	return user.Username, true, nil
}

// CountUsers returns the total number of users.
func (s *service) CountUsers(ctx context.Context) (int, error) {
	return s.repo.CountUsers(ctx)
}

// UpdateUser replaces a user's username, password and email. Renaming into
// an existing username fails with database.ErrUsernameTaken without
// mutating either row. An unknown id reports (false, nil).
func (s *service) UpdateUser(ctx context.Context, req UpdateUserRequest) (bool, error) {
	if req.UserID <= 0 {
		return false, ErrInvalidUserID
	}
	if req.Username == "" {
		return false, ErrEmptyUsername
	}
	if req.Password == "" {
		return false, ErrEmptyPassword
	}
	if err := validate.Email(req.Email); err != nil {
		return false, fmt.Errorf("%w: %q", ErrInvalidEmail, req.Email)
	}

	return s.repo.UpdateUser(ctx, req.UserID, req.Username, req.Password, req.Email)
}

// PromoteToAdmin grants the administrator role. There is no demotion.
func (s *service) PromoteToAdmin(ctx context.Context, userID int) (bool, error) {
	if userID <= 0 {
		return false, ErrInvalidUserID
	}
	return s.repo.PromoteUserToAdmin(ctx, userID)
}

// DeleteUser removes an account. Guarding the last administrator against
// self-lockout is the caller's responsibility.
func (s *service) DeleteUser(ctx context.Context, userID int) (bool, error) {
	if userID <= 0 {
		return false, ErrInvalidUserID
	}
	return s.repo.DeleteUser(ctx, userID)
}

// ImportUsers bulk-loads users from a delimited text file.
func (s *service) ImportUsers(ctx context.Context, path string) (database.ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return database.ImportResult{}, fmt.Errorf("failed to open import file: %w", err)
	}
	defer f.Close()

	return s.repo.ImportUsersFrom(ctx, f)
}

// ExportUsers writes every user to a delimited text file, replacing any
// existing file at path.
func (s *service) ExportUsers(ctx context.Context, path string) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create export file: %w", err)
	}

	count, err := s.repo.ExportUsersTo(ctx, f)
	if closeErr := f.Close(); err == nil && closeErr != nil {
		return 0, fmt.Errorf("failed to close export file: %w", closeErr)
	}
	return count, err
}
