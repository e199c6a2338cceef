package resolver

import "errors"

var (
	// ErrNotFound is an error that occurs when neither an override nor a
	// real entry makes a path visible, or when the path is tombstoned.
	ErrNotFound = errors.New("path not found")

	// ErrNotDirectory is an error that occurs when a listing is requested
	// for a path that resolves to a file.
	ErrNotDirectory = errors.New("not a directory")
)
