package store

import "errors"

var (
	// ErrNotFound is an error that occurs when no override entry exists
	// for a given path.
	ErrNotFound = errors.New("no override for path")

	// ErrStoreFull is an error that occurs when setting an override would
	// exceed the configured memory limit of the [Store].
	ErrStoreFull = errors.New("override store is full")

	// ErrOverrideConflict is an error that occurs when a file override
	// would shadow existing overrides below it, or would be placed below
	// an existing file override.
	ErrOverrideConflict = errors.New("conflicting override state")
)
