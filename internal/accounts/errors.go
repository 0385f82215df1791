package accounts

import "errors"

// Validation errors.
var (
	ErrEmailRequired  = errors.New("email is required")
	ErrEmailExists    = errors.New("this email is already registered")
	ErrInvalidRole    = errors.New("invalid role")
	ErrSuperuserFlags = errors.New("superuser must have is_staff and is_superuser set")
)

// Authentication errors.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUserInactive       = errors.New("user account is inactive")
)

// Repository errors.
var (
	ErrUserNotFound = errors.New("user not found")
)
