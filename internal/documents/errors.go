package documents

import "errors"

var (
	// ErrInvalidInput marks malformed or missing request data.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound marks an absent record or a missing required field.
	ErrNotFound = errors.New("document not found")
	// ErrStorage marks blob or record store failures.
	ErrStorage = errors.New("storage failure")
)
