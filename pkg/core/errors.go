package core

import "errors"

// Common errors.
var (
	// ErrStorageUnavailable means the backend could not be opened.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrNotFound means the note id does not exist.
	ErrNotFound = errors.New("note not found")
	// ErrReadOnly means a mutation was attempted on a read-only store.
	ErrReadOnly = errors.New("store is in read-only mode")
	// ErrUnsupported means the backend lacks an optional capability.
	ErrUnsupported = errors.New("operation not supported by backend")
)
