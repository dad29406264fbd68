package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicateUsername = errors.New("a user with that username already exists")
	ErrEmptyUsername     = errors.New("username must be set")
	ErrUnsupportedDriver = errors.New("unsupported database driver")
)
