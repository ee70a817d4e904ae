package model

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Backend and extractor code wraps one of these
// with %w so callers can classify a failure with errors.Is without
// caring which concrete backend produced it.
var (
	// ErrIO covers filesystem and network failures: a file vanishing
	// mid-crawl, a socket reset, a permission error.
	ErrIO = errors.New("io failure")

	// ErrExtraction covers a document that exists and was readable but
	// whose content could not be turned into text (malformed XML,
	// corrupt PDF).
	ErrExtraction = errors.New("extraction failure")

	// ErrPersistence covers failures writing or reading the backend's
	// durable state: a snapshot that won't marshal, a SQL statement
	// that fails.
	ErrPersistence = errors.New("persistence failure")

	// ErrProtocol covers malformed input at the HTTP boundary: a
	// request body that isn't valid UTF-8, an unroutable path.
	ErrProtocol = errors.New("protocol failure")
)

// InvariantViolation panics with err wrapped; when the panic happens on
// the main goroutine, the top-level recover in main logs it and exits
// with status 1. No code in this module calls it at present: the
// invariants are checked by the backend test suites instead.
func InvariantViolation(format string, args ...any) {
	panic(fmt.Errorf("invariant violation: "+format, args...))
}
