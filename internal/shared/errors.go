package shared

import "errors"

var (
	// ErrNotFound indicates the resource does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates a failed login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrTokenInvalid indicates an unknown or expired bearer token.
	ErrTokenInvalid = errors.New("token invalid or expired")
)
