package auth

import "errors"

// Sentinel kinds for auth errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrEmptySecret        = errors.New("token secret must not be empty")
)
