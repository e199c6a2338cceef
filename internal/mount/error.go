package mount

import "errors"

var (
	// ErrAlreadyMounted is an error that occurs when a mount is requested
	// for a mount point that already has an active mount.
	ErrAlreadyMounted = errors.New("mount point already mounted")

	// ErrNotMounted is an error that occurs when an operation references
	// a mount point without an active mount.
	ErrNotMounted = errors.New("mount point not mounted")

	// ErrUnmounting is an error that occurs when an adapter call arrives
	// after teardown of its mount has begun.
	ErrUnmounting = errors.New("mount is unmounting")

	// ErrBackendInit is an error that occurs when the platform backend
	// could not start; fatal for that mount attempt only.
	ErrBackendInit = errors.New("backend initialization failed")

	// ErrBackendTeardown is an error that occurs when the platform
	// backend could not stop cleanly.
	ErrBackendTeardown = errors.New("backend teardown failed")
)
