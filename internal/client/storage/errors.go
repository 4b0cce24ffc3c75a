package storage

import "errors"

// Common client storage errors
var (
	// ErrSessionNotFound indicates that no session is stored
	ErrSessionNotFound = errors.New("session not found")

	// ErrIncompleteSession indicates an attempt to store a token without a user or vice versa
	ErrIncompleteSession = errors.New("session must contain both token and user")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")
)
