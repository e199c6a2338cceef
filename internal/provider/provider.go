// Package provider implements the operation contract that platform backends
// drive against a mount: read, stat, list, write-intercept and delete. Reads
// follow the resolver's verdict; writes and deletes only ever touch the
// override store, the real filesystem is never mutated. Every call is a pure
// function of the current override store and real filesystem state.
package provider

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/veilfs/veilfs/internal/pathing"
	"github.com/veilfs/veilfs/internal/realfs"
	"github.com/veilfs/veilfs/internal/resolver"
	"github.com/veilfs/veilfs/internal/store"
)

// Attributes is the metadata returned for a path, sourced from the override
// entry or the real filesystem depending on the resolver's verdict.
type Attributes struct {
	Name       string
	Size       int64
	Mode       fs.FileMode
	ModTime    time.Time
	IsDir      bool
	Generation uint64
}

type resolverProvider interface {
	Resolve(path string) (resolver.Resolution, error)
	List(path string) ([]resolver.DirEntry, error)
}

type overrideWriter interface {
	Set(path string, content []byte, meta store.Meta) (uint64, error)
	SetDirectory(path string) error
	SetDeleted(path string) error
	Remove(path string) (store.Entry, error)
}

type realProvider interface {
	ReadFile(path string) ([]byte, error)
	Stat(path string) (os.FileInfo, error)
}

// Provider is the adapter one mount exposes to its platform backend.
type Provider struct {
	resolver resolverProvider
	store    overrideWriter
	real     realProvider
	readOnly bool

	stats Stats
}

// NewProvider returns a pointer to a new [Provider].
func NewProvider(res resolverProvider, st overrideWriter, real realProvider, readOnly bool) *Provider {
	return &Provider{
		resolver: res,
		store:    st,
		real:     real,
		readOnly: readOnly,
	}
}

// ReadFile returns the full content visible at a path: override content for
// an override hit, real content for passthrough. Fails with [ErrNotFound]
// for tombstoned or absent paths and [ErrIsDirectory] for directories.
func (p *Provider) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("(provider-read) %w", err)
	}

	p.stats.reads.Add(1)

	res, err := p.resolver.Resolve(path)
	if err != nil {
		return nil, fmt.Errorf("(provider-read) %w", err)
	}

	switch res.Verdict {
	case resolver.VerdictTombstoned:
		return nil, fmt.Errorf("(provider-read) %w: %s", ErrNotFound, res.Key)

	case resolver.VerdictVirtualDir:
		return nil, fmt.Errorf("(provider-read) %w: %s", ErrIsDirectory, res.Key)

	case resolver.VerdictOverride:
		p.stats.overrideHits.Add(1)
		p.stats.bytesRead.Add(uint64(len(res.Entry.Content)))

		return res.Entry.Content, nil
	}

	info, err := p.real.Stat(res.RealPath)
	if err != nil {
		return nil, p.translateReal("read", res.Key, err)
	}

	if info.IsDir() {
		return nil, fmt.Errorf("(provider-read) %w: %s", ErrIsDirectory, res.Key)
	}

	content, err := p.real.ReadFile(res.RealPath)
	if err != nil {
		return nil, p.translateReal("read", res.Key, err)
	}

	p.stats.passthroughs.Add(1)
	p.stats.bytesRead.Add(uint64(len(content)))

	return content, nil
}

// GetAttributes returns the metadata visible at a path, following the same
// not-found and kind rules as [Provider.ReadFile].
func (p *Provider) GetAttributes(ctx context.Context, path string) (Attributes, error) {
	if err := ctx.Err(); err != nil {
		return Attributes{}, fmt.Errorf("(provider-stat) %w", err)
	}

	p.stats.statOps.Add(1)

	res, err := p.resolver.Resolve(path)
	if err != nil {
		return Attributes{}, fmt.Errorf("(provider-stat) %w", err)
	}

	switch res.Verdict {
	case resolver.VerdictTombstoned:
		return Attributes{}, fmt.Errorf("(provider-stat) %w: %s", ErrNotFound, res.Key)

	case resolver.VerdictOverride:
		p.stats.overrideHits.Add(1)

		return Attributes{
			Name:       pathing.Base(res.Key),
			Size:       res.Entry.Size,
			Mode:       res.Entry.Mode,
			ModTime:    res.Entry.ModTime,
			Generation: res.Entry.Generation,
		}, nil

	case resolver.VerdictVirtualDir:
		return p.virtualDirAttributes(res), nil
	}

	info, err := p.real.Stat(res.RealPath)
	if err != nil {
		return Attributes{}, p.translateReal("stat", res.Key, err)
	}

	p.stats.passthroughs.Add(1)

	return Attributes{
		Name:    pathing.Base(res.Key),
		Size:    info.Size(),
		Mode:    info.Mode(),
		ModTime: info.ModTime(),
		IsDir:   info.IsDir(),
	}, nil
}

// ListDirectory returns the merged, name-ordered listing for a directory.
func (p *Provider) ListDirectory(ctx context.Context, path string) ([]resolver.DirEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("(provider-list) %w", err)
	}

	p.stats.lists.Add(1)

	listing, err := p.resolver.List(path)
	if err != nil {
		switch {
		case errors.Is(err, resolver.ErrNotFound):
			return nil, fmt.Errorf("(provider-list) %w: %w", ErrNotFound, err)
		case errors.Is(err, resolver.ErrNotDirectory):
			return nil, fmt.Errorf("(provider-list) %w: %w", ErrNotDirectory, err)
		default:
			return nil, fmt.Errorf("(provider-list) %w", err)
		}
	}

	return listing, nil
}

// Write intercepts a write by creating or updating an override; the real
// filesystem is never mutated. Returns the new generation.
func (p *Provider) Write(ctx context.Context, path string, content []byte) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("(provider-write) %w", err)
	}

	if p.readOnly {
		return 0, fmt.Errorf("(provider-write) %w: %s", ErrReadOnly, path)
	}

	gen, err := p.store.Set(path, content, store.Meta{})
	if err != nil {
		return 0, fmt.Errorf("(provider-write) %w", err)
	}

	p.stats.writes.Add(1)
	p.stats.bytesWritten.Add(uint64(len(content)))

	return gen, nil
}

// MakeDirectory intercepts a directory creation by inserting an explicit
// directory override; the real filesystem is never mutated.
func (p *Provider) MakeDirectory(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("(provider-mkdir) %w", err)
	}

	if p.readOnly {
		return fmt.Errorf("(provider-mkdir) %w: %s", ErrReadOnly, path)
	}

	if err := p.store.SetDirectory(path); err != nil {
		return fmt.Errorf("(provider-mkdir) %w", err)
	}

	p.stats.mkdirs.Add(1)

	return nil
}

// Delete intercepts a delete by tombstoning the path; the real file remains
// untouched on disk.
func (p *Provider) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("(provider-delete) %w", err)
	}

	if p.readOnly {
		return fmt.Errorf("(provider-delete) %w: %s", ErrReadOnly, path)
	}

	if err := p.store.SetDeleted(path); err != nil {
		return fmt.Errorf("(provider-delete) %w", err)
	}

	p.stats.deletes.Add(1)

	return nil
}

// Remove clears the override at a path, restoring passthrough visibility.
func (p *Provider) Remove(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("(provider-remove) %w", err)
	}

	if p.readOnly {
		return fmt.Errorf("(provider-remove) %w: %s", ErrReadOnly, path)
	}

	if _, err := p.store.Remove(path); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("(provider-remove) %w: %w", ErrNotFound, err)
		}

		return fmt.Errorf("(provider-remove) %w", err)
	}

	p.stats.removes.Add(1)

	return nil
}

// virtualDirAttributes synthesizes metadata for a virtual directory,
// preferring the explicit override entry when one exists.
func (p *Provider) virtualDirAttributes(res resolver.Resolution) Attributes {
	attrs := Attributes{
		Name:  pathing.Base(res.Key),
		Mode:  fs.ModeDir | store.DefaultDirMode,
		IsDir: true,
	}

	if res.Entry.Explicit {
		attrs.Mode = fs.ModeDir | res.Entry.Mode
		attrs.ModTime = res.Entry.ModTime
		attrs.Generation = res.Entry.Generation

		return attrs
	}

	// Implicit ancestor: fall back to real metadata when the directory
	// also exists on disk.
	if info, err := p.real.Stat(res.RealPath); err == nil && info.IsDir() {
		attrs.Mode = info.Mode()
		attrs.ModTime = info.ModTime()
	}

	return attrs
}

// translateReal maps realfs errors into the provider taxonomy.
func (p *Provider) translateReal(op, key string, err error) error {
	if errors.Is(err, realfs.ErrNotFound) {
		return fmt.Errorf("(provider-%s) %w: %s", op, ErrNotFound, key)
	}

	return fmt.Errorf("(provider-%s) %w", op, err)
}
