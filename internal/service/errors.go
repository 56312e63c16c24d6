package service

import "errors"

var (
	// ErrNotFound is returned when a task does not exist or belongs to
	// someone else. The two cases are indistinguishable on purpose.
	ErrNotFound = errors.New("not found")

	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email already taken")
	ErrPasswordLength     = errors.New("password length out of range")

	ErrEmptyTitle    = errors.New("title cannot be empty")
	ErrInvalidStatus = errors.New("status must be pending or completed")
)
