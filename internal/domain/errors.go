package domain

import "errors"

// Error kinds shared by every layer. Package-specific errors unwrap to one of
// these so callers can branch with errors.Is.
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidRole      = errors.New("invalid role")
	ErrModelUnavailable = errors.New("model unavailable")
	ErrIndexingFailure  = errors.New("indexing failure")
	ErrStorageFailure   = errors.New("storage failure")
)
