package mount

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"

	"github.com/spf13/afero"
	"github.com/veilfs/veilfs/internal/pathing"
	"github.com/veilfs/veilfs/internal/provider"
	"github.com/veilfs/veilfs/internal/realfs"
	"github.com/veilfs/veilfs/internal/resolver"
	"github.com/veilfs/veilfs/internal/store"
)

// Request describes one mount request.
type Request struct {
	// Source is the real directory tree to overlay.
	Source string

	// MountPoint is the location at which the merged view is exposed.
	MountPoint string

	// Backend is the platform projection layer; nil selects [Loopback].
	Backend Backend

	// Options configures the mount.
	Options Options
}

// Manager owns all active mounts of one process, keyed by mount point.
// Transitions for one mount point are mutually exclusive; operations on
// distinct mounts never block each other.
type Manager struct {
	sync.RWMutex

	fs     afero.Fs
	mounts map[string]*Mount
}

// NewManager returns a pointer to a new [Manager] reading real content
// through the given [afero.Fs].
func NewManager(fsys afero.Fs) *Manager {
	return &Manager{
		fs:     fsys,
		mounts: make(map[string]*Mount),
	}
}

// Mount validates a request, builds the per-mount store, resolver and
// provider, starts the backend and transitions the mount to [StateMounted].
// Fails fast with [ErrAlreadyMounted] when the mount point is already
// occupied, including by a mount whose teardown failed and awaits a retried
// Unmount, and with [ErrBackendInit] when the backend cannot start.
func (mgr *Manager) Mount(ctx context.Context, req Request) (*Mount, error) {
	if req.Source == "" || req.MountPoint == "" {
		return nil, fmt.Errorf("(mount-mgr) %w: source and mount point are required", pathing.ErrInvalidPath)
	}

	real := realfs.NewHandler(mgr.fs)

	isDir, err := real.IsDir(req.Source)
	if err != nil {
		return nil, fmt.Errorf("(mount-mgr) %w", err)
	}
	if !isDir {
		return nil, fmt.Errorf("(mount-mgr) %w: source is not a directory: %s", pathing.ErrInvalidPath, req.Source)
	}

	backend := req.Backend
	if backend == nil {
		backend = NewLoopback()
	}

	point := filepath.Clean(req.MountPoint)

	st := store.NewStore(store.Options{
		Normalizer:           pathing.Normalizer{CaseInsensitive: req.Options.CaseInsensitive},
		MaxBytes:             req.Options.MaxOverrideBytes,
		CompressionThreshold: req.Options.CompressionThreshold,
	})

	res := resolver.NewResolver(st, real, req.Source)

	mnt := &Mount{
		source:     req.Source,
		mountPoint: point,
		opts:       req.Options,
		store:      st,
		provider:   provider.NewProvider(res, st, real, req.Options.ReadOnly),
		backend:    backend,
		state:      StateMounting,
	}

	mgr.Lock()
	if _, exists := mgr.mounts[point]; exists {
		mgr.Unlock()

		return nil, fmt.Errorf("(mount-mgr) %w: %s", ErrAlreadyMounted, point)
	}
	mgr.mounts[point] = mnt
	mgr.Unlock()

	slog.Info("Mounting", "source", req.Source, "mount", point, "backend", backend.Name())

	if err := backend.Start(ctx, mnt); err != nil {
		mnt.setState(StateFailed)
		mnt.store.Clear()

		mgr.Lock()
		delete(mgr.mounts, point)
		mgr.Unlock()

		return nil, fmt.Errorf("(mount-mgr) %w: %w", ErrBackendInit, err)
	}

	mnt.setState(StateMounted)

	slog.Info("Mounted", "mount", point, "backend", backend.Name())

	return mnt, nil
}

// Unmount transitions a mount to [StateUnmounting], rejects new adapter
// calls, drains admitted ones bounded by the context, stops the backend and
// discards the override store. Fails with [ErrNotMounted] when the mount
// point has no active mount. A mount left in [StateFailed] by a drain
// timeout or a backend teardown failure stays registered and a later
// Unmount retries its teardown.
func (mgr *Manager) Unmount(ctx context.Context, mountPoint string) error {
	point := filepath.Clean(mountPoint)

	mgr.RLock()
	mnt, exists := mgr.mounts[point]
	mgr.RUnlock()

	if !exists {
		return fmt.Errorf("(mount-mgr) %w: %s", ErrNotMounted, point)
	}

	if err := mnt.beginUnmount(); err != nil {
		return err
	}

	slog.Info("Unmounting", "mount", point)

	if err := mnt.drain(ctx); err != nil {
		mnt.setState(StateFailed)

		return err
	}

	if err := mnt.backend.Stop(ctx); err != nil {
		mnt.setState(StateFailed)

		return fmt.Errorf("(mount-mgr) %w: %w", ErrBackendTeardown, err)
	}

	mnt.store.Clear()
	mnt.setState(StateUnmounted)

	mgr.Lock()
	delete(mgr.mounts, point)
	mgr.Unlock()

	slog.Info("Unmounted", "mount", point)

	return nil
}

// Get returns the active mount for a mount point.
func (mgr *Manager) Get(mountPoint string) (*Mount, error) {
	point := filepath.Clean(mountPoint)

	mgr.RLock()
	defer mgr.RUnlock()

	mnt, exists := mgr.mounts[point]
	if !exists {
		return nil, fmt.Errorf("(mount-mgr) %w: %s", ErrNotMounted, point)
	}

	return mnt, nil
}

// Status returns descriptions of all mounts, ordered by mount point.
func (mgr *Manager) Status() []Info {
	mgr.RLock()
	mounts := make([]*Mount, 0, len(mgr.mounts))
	for _, mnt := range mgr.mounts {
		mounts = append(mounts, mnt)
	}
	mgr.RUnlock()

	infos := make([]Info, 0, len(mounts))
	for _, mnt := range mounts {
		infos = append(infos, mnt.Info())
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].MountPoint < infos[j].MountPoint
	})

	return infos
}

// UnmountAll unmounts every active mount; used on process shutdown.
func (mgr *Manager) UnmountAll(ctx context.Context) error {
	var firstErr error

	for _, info := range mgr.Status() {
		if err := mgr.Unmount(ctx, info.MountPoint); err != nil {
			slog.Warn("Failed to unmount", "mount", info.MountPoint, "err", err)

			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}
