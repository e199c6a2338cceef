package realfs

import "errors"

var (
	// ErrNotFound is an error that occurs when a real path does not exist.
	ErrNotFound = errors.New("real path not found")

	// ErrPassthroughIO is an error that occurs when the real filesystem
	// reports any failure other than absence; the underlying error is
	// wrapped alongside it.
	ErrPassthroughIO = errors.New("passthrough i/o failure")
)
