// Package mount implements the lifecycle state machine governing mounts and
// the manager coordinating all active mounts of one process. Each mount owns
// its override store, resolver and provider; nothing is process-global, so
// multiple mounts stay independent and testable in isolation.
package mount

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/veilfs/veilfs/internal/provider"
	"github.com/veilfs/veilfs/internal/resolver"
	"github.com/veilfs/veilfs/internal/store"
)

// Mount is one active overlay of in-memory overrides onto a real directory
// tree. Adapter calls are admitted only in [StateMounted]; once unmounting
// begins, new calls are rejected while admitted calls drain to completion,
// so no call ever dereferences a discarded store.
type Mount struct {
	source     string
	mountPoint string
	opts       Options

	store    *store.Store
	provider *provider.Provider
	backend  Backend

	mu        sync.Mutex
	state     State
	mountedAt time.Time

	inflight sync.WaitGroup
}

// Source returns the real directory tree the mount overlays.
func (m *Mount) Source() string {
	return m.source
}

// MountPoint returns the location at which the merged view is exposed.
func (m *Mount) MountPoint() string {
	return m.mountPoint
}

// State returns the current lifecycle state.
func (m *Mount) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.state
}

// setState transitions the lifecycle state.
func (m *Mount) setState(s State) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = s
	if s == StateMounted {
		m.mountedAt = time.Now()
	}
}

// enter admits one adapter call. Admission and the state check happen under
// one lock, so a drain that begins afterwards is guaranteed to wait for this
// call.
func (m *Mount) enter() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case StateMounted:
		m.inflight.Add(1)

		return nil
	case StateUnmounting:
		return fmt.Errorf("(mount) %w: %s", ErrUnmounting, m.mountPoint)
	default:
		return fmt.Errorf("(mount) %w: %s", ErrNotMounted, m.mountPoint)
	}
}

func (m *Mount) leave() {
	m.inflight.Done()
}

// beginUnmount transitions Mounted to Unmounting; no adapter call is
// admitted afterwards. A mount left in Failed state by an earlier teardown
// attempt may begin unmounting again, so teardown can be retried.
func (m *Mount) beginUnmount() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case StateMounted, StateFailed:
		m.state = StateUnmounting

		return nil
	case StateUnmounting:
		return fmt.Errorf("(mount) %w: %s", ErrUnmounting, m.mountPoint)
	default:
		return fmt.Errorf("(mount) %w: %s", ErrNotMounted, m.mountPoint)
	}
}

// drain waits for all admitted adapter calls to complete, bounded by the
// given context.
func (m *Mount) drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("(mount-drain) %w", ctx.Err())
	}
}

// ReadFile serves a read through the mount's provider.
func (m *Mount) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := m.enter(); err != nil {
		return nil, err
	}
	defer m.leave()

	return m.provider.ReadFile(ctx, path)
}

// GetAttributes serves a metadata lookup through the mount's provider.
func (m *Mount) GetAttributes(ctx context.Context, path string) (provider.Attributes, error) {
	if err := m.enter(); err != nil {
		return provider.Attributes{}, err
	}
	defer m.leave()

	return m.provider.GetAttributes(ctx, path)
}

// ListDirectory serves a merged listing through the mount's provider.
func (m *Mount) ListDirectory(ctx context.Context, path string) ([]resolver.DirEntry, error) {
	if err := m.enter(); err != nil {
		return nil, err
	}
	defer m.leave()

	return m.provider.ListDirectory(ctx, path)
}

// Write intercepts a write into the mount's override store.
func (m *Mount) Write(ctx context.Context, path string, content []byte) (uint64, error) {
	if err := m.enter(); err != nil {
		return 0, err
	}
	defer m.leave()

	return m.provider.Write(ctx, path, content)
}

// MakeDirectory inserts an explicit directory override.
func (m *Mount) MakeDirectory(ctx context.Context, path string) error {
	if err := m.enter(); err != nil {
		return err
	}
	defer m.leave()

	return m.provider.MakeDirectory(ctx, path)
}

// Delete tombstones a path in the mount's override store.
func (m *Mount) Delete(ctx context.Context, path string) error {
	if err := m.enter(); err != nil {
		return err
	}
	defer m.leave()

	return m.provider.Delete(ctx, path)
}

// Remove clears an override, restoring passthrough visibility.
func (m *Mount) Remove(ctx context.Context, path string) error {
	if err := m.enter(); err != nil {
		return err
	}
	defer m.leave()

	return m.provider.Remove(ctx, path)
}

// Info returns a point-in-time description of the mount.
func (m *Mount) Info() Info {
	files, dirs, tombstones := m.store.Counts()

	m.mu.Lock()
	state := m.state
	mountedAt := m.mountedAt
	m.mu.Unlock()

	return Info{
		MountPoint:  m.mountPoint,
		Source:      m.source,
		Backend:     m.backend.Name(),
		State:       state,
		ReadOnly:    m.opts.ReadOnly,
		MountedAt:   mountedAt,
		Files:       files,
		Directories: dirs,
		Tombstones:  tombstones,
		MemoryUsage: m.store.MemoryUsage(),
		MaxBytes:    m.store.MaxBytes(),
		Provider:    m.provider.Stats(),
		Store:       m.store.Stats(),
	}
}

// Info describes one mount for status reporting.
type Info struct {
	MountPoint  string
	Source      string
	Backend     string
	State       State
	ReadOnly    bool
	MountedAt   time.Time
	Files       int
	Directories int
	Tombstones  int
	MemoryUsage int64
	MaxBytes    int64
	Provider    provider.StatsSnapshot
	Store       store.StatsSnapshot
}
