package auth

import "errors"

var (
	// ErrInvalidToken is returned for any token that fails verification
	ErrInvalidToken = errors.New("invalid or expired token")

	// ErrInvalidCredentials is returned when username or password do not match
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrDeviceLimit is returned when a user already has the maximum number of sessions
	ErrDeviceLimit = errors.New("device limit reached")

	// ErrUserNotFound is returned for unknown user ids
	ErrUserNotFound = errors.New("user not found")

	// ErrUserExists is returned when creating a duplicate username
	ErrUserExists = errors.New("user already exists")
)
