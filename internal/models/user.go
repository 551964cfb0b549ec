package models

// User represents an account that can log in and be assigned tasks.
type User struct {
	ID       int
	Username string
	Password string
	Email    string
	IsAdmin  string // FlagNo or FlagYes
}

// Admin reports whether the user holds the administrator role.
func (u *User) Admin() bool {
	return u.IsAdmin == FlagYes
}

// AuthResult is the outcome of a successful login.
type AuthResult struct {
	Role     string // RoleAdmin or RoleUser
	Username string // canonical username as stored
}
