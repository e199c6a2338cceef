package mount

import (
	"context"
	"sync/atomic"
)

// Backend is the platform projection layer behind a mount. The three native
// backends (Windows projection, macOS filesystem framework, Linux user-space
// filesystem) implement this interface out of tree; they own their native
// callback wiring and delegate every decision to the [Mount] they are given.
type Backend interface {
	// Name identifies the backend in logs and status output.
	Name() string

	// Start registers the backend with its native projection API and
	// returns once it is ready to receive filesystem calls. A returned
	// error fails the mount attempt.
	Start(ctx context.Context, mnt *Mount) error

	// Stop deregisters the backend; called after in-flight adapter calls
	// have drained.
	Stop(ctx context.Context) error
}

// Loopback is a backend without any native projection: the merged view is
// only reachable through the [Mount] adapter methods. Used by tests and by
// the command-line interface.
type Loopback struct {
	started atomic.Bool
}

// NewLoopback returns a pointer to a new [Loopback] backend.
func NewLoopback() *Loopback {
	return &Loopback{}
}

// Name identifies the backend.
func (*Loopback) Name() string {
	return "loopback"
}

// Start confirms readiness immediately.
func (l *Loopback) Start(_ context.Context, _ *Mount) error {
	l.started.Store(true)

	return nil
}

// Stop confirms teardown immediately.
func (l *Loopback) Stop(_ context.Context) error {
	l.started.Store(false)

	return nil
}

// Started reports whether the backend is between Start and Stop.
func (l *Loopback) Started() bool {
	return l.started.Load()
}
