package policy

import "errors"

var (
	// ErrNotFound is returned both for resources that do not exist and for
	// resources the viewer may not see. Callers must not tell the two apart.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when an actor mutates something outside their rights.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation is returned for malformed writes, e.g. a mixed allow/deny
	// permission set.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidTransition is returned when a suggestion is acted on after it
	// reached a terminal state.
	ErrInvalidTransition = errors.New("invalid suggestion transition")
)
