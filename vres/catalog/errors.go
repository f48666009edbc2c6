package catalog

import "errors"

// Structural failures propagate to the caller; absent keys never do. A key
// that does not resolve is an ordinary negative result surfaced through
// (record, ok) returns, not an error.
var (
	// ErrNotFound indicates the requested logical name did not resolve.
	// Only the byte-returning convenience paths surface this; Resolve and
	// Exists report absence through their ok result.
	ErrNotFound = errors.New("resource not found")

	// ErrOpenFailure indicates a root or archive could not be opened.
	// Fatal for that specific build call only.
	ErrOpenFailure = errors.New("cannot open source")

	// ErrFormat indicates a malformed archive container: enumeration failed
	// mid-scan or the container carries duplicate entry paths. Fatal for
	// that archive call; no records from the failing scan are committed.
	ErrFormat = errors.New("archive format error")
)
