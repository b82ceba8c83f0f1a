// Package apperr defines the sentinel errors shared across the application.
//
// Callers wrap these with fmt.Errorf("%w: ...") to add context and match them
// with errors.Is at the boundary that decides how a failure is reported.
package apperr

import "errors"

var (
	// ErrValidation marks a malformed incoming record, e.g. an import payload
	// entry with no resolvable name. Recorded per record, never fatal.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a lookup against an id that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks an optimistic-concurrency version mismatch on write.
	ErrConflict = errors.New("version conflict")

	// ErrFetch marks a failure to load the canonical population. Fatal for an
	// analysis call: classification needs the full population.
	ErrFetch = errors.New("population fetch failed")
)
