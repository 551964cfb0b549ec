package user

import "errors"

// User-related errors
var (
	ErrEmptyUsername = errors.New("username cannot be empty")
	ErrEmptyPassword = errors.New("password cannot be empty")
	ErrInvalidEmail  = errors.New("email must look like local@domain.tld")
	ErrInvalidUserID = errors.New("invalid user ID")
)
