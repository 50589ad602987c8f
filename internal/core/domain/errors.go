package domain

import "errors"

var (
	// ErrValidation is wrapped with a human-readable message, e.g.
	// fmt.Errorf("%w: title is required", ErrValidation).
	ErrValidation = errors.New("validation failed")

	ErrUnauthenticated    = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("access forbidden")

	ErrTaskNotFound = errors.New("task not found")
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)
