package repository

import "errors"

var (
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("duplicate record")

	// ErrConflict is returned when a guarded update finds the row in an
	// unexpected state, e.g. a suggestion that is no longer pending.
	ErrConflict = errors.New("record changed concurrently")
)
