package provider

import "errors"

var (
	// ErrNotFound is an error that occurs when a path is tombstoned or
	// visible on neither the override nor the real side.
	ErrNotFound = errors.New("path not found")

	// ErrIsDirectory is an error that occurs when a file operation is
	// requested on a directory.
	ErrIsDirectory = errors.New("is a directory")

	// ErrNotDirectory is an error that occurs when a directory operation
	// is requested on a file.
	ErrNotDirectory = errors.New("not a directory")

	// ErrReadOnly is an error that occurs when a mutating operation is
	// requested on a read-only mount.
	ErrReadOnly = errors.New("mount is read-only")
)
