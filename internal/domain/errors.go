package domain

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInvalidInput   = errors.New("invalid input")

	// ErrForbidden is reserved for operations without an ownership
	// concept. Task operations never return it: denied access to a
	// task surfaces as ErrNotFound so task ids cannot be probed
	// across users.
	ErrForbidden = errors.New("forbidden")
)
