package accesscontrol

import (
	"errors"
	"fmt"
)

var (
	// ErrNoIndexPermissions is returned when a permission set is present but
	// carries no entry for the index being wrapped. This is a configuration
	// error: the request passed authorization yet no decision exists for the
	// index, so the reader must not be exposed unfiltered.
	ErrNoIndexPermissions = errors.New("no index permissions found")

	// ErrAlreadyWrapped is returned when a document-subset reader is wrapped
	// in another document-subset reader.
	ErrAlreadyWrapped = errors.New("reader is already document filtered")

	// ErrNoIndexName is returned when the index a reader belongs to cannot
	// be determined, which makes permission lookup impossible.
	ErrNoIndexName = errors.New("couldn't determine index name from reader")
)

// FilterConstructionError indicates that a role query failed to compile
// against the current index, e.g. because it references a field that no
// longer exists. Not retryable; the stored query needs operator attention.
type FilterConstructionError struct {
	Index string
	cause error
}

func (e *FilterConstructionError) Error() string {
	return fmt.Sprintf("failed to build role query filter for index %q: %v", e.Index, e.cause)
}

func (e *FilterConstructionError) Unwrap() error { return e.cause }

// ResourceError indicates an I/O failure while reading segment data, e.g.
// during visibility-bitset construction. Retry policy belongs to the caller.
type ResourceError struct {
	Index string
	cause error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("failed to read segment data for index %q: %v", e.Index, e.cause)
}

func (e *ResourceError) Unwrap() error { return e.cause }
