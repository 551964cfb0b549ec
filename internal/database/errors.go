package database

import "errors"

// Errors surfaced by the user repository. These are signals the caller is
// expected to branch on, not storage failures.
var (
	// ErrUsernameTaken indicates an add or rename would collide with an
	// existing username. Neither row is mutated when this is returned.
	ErrUsernameTaken = errors.New("username is already taken")

	// ErrUnknownUser indicates a login attempt for a username that does
	// not exist.
	ErrUnknownUser = errors.New("no user with that username")

	// ErrWrongPassword indicates the username exists but the password did
	// not match. Kept distinct from ErrUnknownUser so the caller can phrase
	// the two failures differently.
	ErrWrongPassword = errors.New("incorrect password")
)
