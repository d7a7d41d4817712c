package store

import "errors"

var (
	// ErrNotFound is returned for lookups that matched no row.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a unique constraint rejects a write,
	// e.g. a duplicate rubric key or admin email.
	ErrConflict = errors.New("already exists")
)
