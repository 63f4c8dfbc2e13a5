package domain

import "errors"

var (
	// ErrValidation marks malformed or missing input.
	ErrValidation = errors.New("validation error")
	// ErrDuplicateEmail is returned when an email is already registered.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrAuthentication indicates that the supplied credentials do not match.
	ErrAuthentication = errors.New("invalid credentials")
	// ErrUnauthenticated means the caller holds no valid session.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrPermissionDenied is returned when the caller does not own the record.
	ErrPermissionDenied = errors.New("permission denied")
)
