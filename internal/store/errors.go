package store

import "errors"

var (
	// ErrNotFound is returned when no live admin matches the requested id.
	ErrNotFound = errors.New("admin not found")

	// ErrEmailTaken is returned when an insert or update would violate the
	// email uniqueness constraint.
	ErrEmailTaken = errors.New("email already in use")
)
