package storage

import "errors"

// Common storage errors
var (
	// ErrUserNotFound indicates that user was not found in storage
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates that user with this username or email already exists
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrNotFound indicates that document was not found or belongs to another user
	ErrNotFound = errors.New("not found")
)
