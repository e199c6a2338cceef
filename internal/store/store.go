// Package store implements the authoritative in-memory mapping from
// canonical mount-relative keys to override entries. It is the single source
// of truth for what a mount virtually contains on top of the real filesystem:
// whole-file content overrides, override-created directories and tombstones
// marking real paths as virtually deleted.
//
// All operations are atomic with respect to a single path; a reader observes
// either the pre-mutation or the post-mutation entry in full, never a partial
// one. The per-path generation counter is the atomicity boundary.
package store

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/veilfs/veilfs/internal/pathing"
	"github.com/zeebo/blake3"
)

const (
	// DefaultFileMode is the permission set for file overrides without
	// caller-supplied metadata.
	DefaultFileMode = 0o644

	// DefaultDirMode is the permission set presented for virtual
	// directories.
	DefaultDirMode = 0o755

	// entryOverhead approximates the bookkeeping bytes per stored entry,
	// on top of its content, for memory accounting.
	entryOverhead = 160
)

// Options configures a [Store].
type Options struct {
	// Normalizer canonicalizes incoming paths.
	Normalizer pathing.Normalizer

	// MaxBytes limits the accounted memory usage of the store;
	// zero means unlimited.
	MaxBytes int64

	// CompressionThreshold is the content size in bytes at which file
	// content is stored zstd-compressed; zero disables compression.
	CompressionThreshold int
}

// Store is the override mapping for one mount. It is safe for concurrent use.
type Store struct {
	sync.RWMutex

	norm       pathing.Normalizer
	entries    map[string]*entry
	generation atomic.Uint64

	memoryUsage int64
	maxBytes    int64

	compressor *compressor

	stats Stats
}

// NewStore returns a pointer to a new, empty [Store].
func NewStore(opts Options) *Store {
	return &Store{
		norm:       opts.Normalizer,
		entries:    make(map[string]*entry),
		maxBytes:   opts.MaxBytes,
		compressor: newCompressor(opts.CompressionThreshold),
	}
}

// Normalize exposes the store's path canonicalization, so that collaborators
// operate on the exact keys the store uses.
func (s *Store) Normalize(path string) (string, error) {
	return s.norm.Normalize(path)
}

// Set inserts or replaces a whole-file override at the given path and returns
// the new generation. The content is copied; the caller keeps ownership of
// its buffer. Fails with [pathing.ErrInvalidPath] when the path cannot be
// normalized, [ErrOverrideConflict] when the file would shadow overrides
// below it (or sit below an existing file override) and [ErrStoreFull] when
// the memory limit would be exceeded.
func (s *Store) Set(path string, content []byte, meta Meta) (uint64, error) {
	key, err := s.norm.Normalize(path)
	if err != nil {
		return 0, fmt.Errorf("(store-set) %w", err)
	}

	if pathing.IsRoot(key) {
		return 0, fmt.Errorf("(store-set) %w: cannot override mount root with a file", ErrOverrideConflict)
	}

	hash := blake3.Sum256(content)
	stored, compressed := s.compressor.compress(content)

	mode := meta.Mode
	if mode == 0 {
		mode = DefaultFileMode
	}

	modTime := meta.ModTime
	if modTime.IsZero() {
		modTime = time.Now()
	}

	s.Lock()
	defer s.Unlock()

	if s.hasBelowLocked(key) {
		return 0, fmt.Errorf("(store-set) %w: overrides exist below %s", ErrOverrideConflict, key)
	}

	if blocker := s.fileAncestorLocked(key); blocker != "" {
		return 0, fmt.Errorf("(store-set) %w: file override at ancestor %s", ErrOverrideConflict, blocker)
	}

	var previousSize int64
	if prev, exists := s.entries[key]; exists {
		previousSize = entrySize(prev)
	}

	next := &entry{
		kind:        KindFile,
		content:     stored,
		size:        int64(len(content)),
		modTime:     modTime,
		mode:        mode,
		contentHash: hash,
		compressed:  compressed,
	}

	if s.maxBytes > 0 && s.memoryUsage-previousSize+entrySize(next) > s.maxBytes {
		return 0, fmt.Errorf("(store-set) %w: %d of %d bytes in use",
			ErrStoreFull, s.memoryUsage, s.maxBytes)
	}

	// Bump only once the write is certain to land; a rejected write must not
	// advance the mutation ordinal.
	next.generation = s.generation.Add(1)

	s.entries[key] = next
	s.memoryUsage += entrySize(next) - previousSize
	s.stats.sets.Add(1)

	return next.generation, nil
}

// SetDeleted inserts a tombstone at the given path, virtually deleting the
// real path without touching it. Tombstoning an already tombstoned path is
// idempotent apart from the generation bump.
func (s *Store) SetDeleted(path string) error {
	key, err := s.norm.Normalize(path)
	if err != nil {
		return fmt.Errorf("(store-delete) %w", err)
	}

	if pathing.IsRoot(key) {
		return fmt.Errorf("(store-delete) %w: cannot tombstone mount root", ErrOverrideConflict)
	}

	s.Lock()
	defer s.Unlock()

	var previousSize int64
	if prev, exists := s.entries[key]; exists {
		previousSize = entrySize(prev)
	}

	next := &entry{
		kind:       KindTombstone,
		generation: s.generation.Add(1),
	}

	s.entries[key] = next
	s.memoryUsage += entrySize(next) - previousSize
	s.stats.deletes.Add(1)

	return nil
}

// SetDirectory inserts an explicit directory override at the given path.
func (s *Store) SetDirectory(path string) error {
	key, err := s.norm.Normalize(path)
	if err != nil {
		return fmt.Errorf("(store-mkdir) %w", err)
	}

	if pathing.IsRoot(key) {
		return nil
	}

	s.Lock()
	defer s.Unlock()

	if blocker := s.fileAncestorLocked(key); blocker != "" {
		return fmt.Errorf("(store-mkdir) %w: file override at ancestor %s", ErrOverrideConflict, blocker)
	}

	var previousSize int64
	if prev, exists := s.entries[key]; exists {
		if prev.kind == KindFile {
			return fmt.Errorf("(store-mkdir) %w: file override at %s", ErrOverrideConflict, key)
		}
		previousSize = entrySize(prev)
	}

	next := &entry{
		kind:       KindDirectory,
		mode:       DefaultDirMode,
		modTime:    time.Now(),
		generation: s.generation.Add(1),
		explicit:   true,
	}

	s.entries[key] = next
	s.memoryUsage += entrySize(next) - previousSize
	s.stats.sets.Add(1)

	return nil
}

// Get returns a detached copy of the override entry for the given path, with
// file content decompressed. It is a pure lookup and never consults the real
// filesystem. Fails with [ErrNotFound] when no entry exists.
func (s *Store) Get(path string) (Entry, error) {
	key, err := s.norm.Normalize(path)
	if err != nil {
		return Entry{}, fmt.Errorf("(store-get) %w", err)
	}

	s.RLock()
	ent, exists := s.entries[key]
	s.RUnlock()

	if !exists {
		s.stats.misses.Add(1)

		return Entry{}, fmt.Errorf("(store-get) %w: %s", ErrNotFound, key)
	}

	s.stats.hits.Add(1)

	return s.detach(ent)
}

// Remove clears the override at the given path, returning the previous entry.
// Removing a tombstone restores visibility of the real path; removing a file
// override restores passthrough. Fails with [ErrNotFound] when no entry
// exists.
func (s *Store) Remove(path string) (Entry, error) {
	key, err := s.norm.Normalize(path)
	if err != nil {
		return Entry{}, fmt.Errorf("(store-remove) %w", err)
	}

	s.Lock()

	ent, exists := s.entries[key]
	if !exists {
		s.Unlock()

		return Entry{}, fmt.Errorf("(store-remove) %w: %s", ErrNotFound, key)
	}

	delete(s.entries, key)
	s.memoryUsage -= entrySize(ent)
	s.generation.Add(1)
	s.stats.removes.Add(1)

	s.Unlock()

	return s.detach(ent)
}

// Children returns the virtual children directly under the given path, one
// level deep, derived on demand from all stored keys. Ancestor directories of
// deeper overrides are synthesized as [KindDirectory]; tombstoned names are
// included as [KindTombstone] so that listing merges can exclude them. The
// snapshot is taken under one read lock, so no half-applied mutation of a
// child is ever observed.
func (s *Store) Children(path string) (map[string]Kind, error) {
	key, err := s.norm.Normalize(path)
	if err != nil {
		return nil, fmt.Errorf("(store-children) %w", err)
	}

	s.RLock()
	defer s.RUnlock()

	children := make(map[string]Kind)

	for stored, ent := range s.entries {
		if !pathing.IsAncestor(key, stored) {
			continue
		}

		if pathing.Parent(stored) == key {
			children[pathing.Base(stored)] = ent.kind

			continue
		}

		// A deeper override implies this segment is a directory for
		// listing purposes, unless an explicit entry already claimed
		// the name.
		name := childSegment(key, stored)
		if _, claimed := children[name]; !claimed {
			children[name] = KindDirectory
		}
	}

	return children, nil
}

// HasOverrideBelow reports whether any override is stored strictly below the
// given path.
func (s *Store) HasOverrideBelow(path string) bool {
	key, err := s.norm.Normalize(path)
	if err != nil {
		return false
	}

	s.RLock()
	defer s.RUnlock()

	return s.hasBelowLocked(key)
}

// Len returns the number of stored override entries.
func (s *Store) Len() int {
	s.RLock()
	defer s.RUnlock()

	return len(s.entries)
}

// Counts returns the number of stored entries per [Kind].
func (s *Store) Counts() (files int, dirs int, tombstones int) {
	s.RLock()
	defer s.RUnlock()

	for _, ent := range s.entries {
		switch ent.kind {
		case KindFile:
			files++
		case KindDirectory:
			dirs++
		case KindTombstone:
			tombstones++
		}
	}

	return files, dirs, tombstones
}

// MemoryUsage returns the accounted memory usage in bytes, with compressed
// entries accounted at their stored size.
func (s *Store) MemoryUsage() int64 {
	s.RLock()
	defer s.RUnlock()

	return s.memoryUsage
}

// MaxBytes returns the configured memory limit; zero means unlimited.
func (s *Store) MaxBytes() int64 {
	return s.maxBytes
}

// Generation returns the store-wide mutation counter.
func (s *Store) Generation() uint64 {
	return s.generation.Load()
}

// Clear discards all override entries; called on unmount.
func (s *Store) Clear() {
	s.Lock()
	defer s.Unlock()

	s.entries = make(map[string]*entry)
	s.memoryUsage = 0
}

// detach produces the caller-facing copy of an internal entry.
func (s *Store) detach(ent *entry) (Entry, error) {
	content, err := s.compressor.decompress(ent.content, ent.size, ent.compressed)
	if err != nil {
		return Entry{}, fmt.Errorf("(store-detach) %w", err)
	}

	return Entry{
		Kind:        ent.kind,
		Content:     content,
		Size:        ent.size,
		ModTime:     ent.modTime,
		Mode:        ent.mode,
		Generation:  ent.generation,
		ContentHash: ent.contentHash,
		Explicit:    ent.explicit,
	}, nil
}

// hasBelowLocked reports stored keys strictly below key; caller holds a lock.
func (s *Store) hasBelowLocked(key string) bool {
	for stored := range s.entries {
		if pathing.IsAncestor(key, stored) {
			return true
		}
	}

	return false
}

// fileAncestorLocked returns the closest proper ancestor of key holding a
// file override, or an empty string; caller holds a lock.
func (s *Store) fileAncestorLocked(key string) string {
	for anc := pathing.Parent(key); ; anc = pathing.Parent(anc) {
		if ent, exists := s.entries[anc]; exists && ent.kind == KindFile {
			return anc
		}
		if pathing.IsRoot(anc) {
			return ""
		}
	}
}

// childSegment returns the first path segment of stored below key.
func childSegment(key, stored string) string {
	rel := stored[len(key):]
	if !pathing.IsRoot(key) {
		rel = rel[1:] // skip the joining slash
	}

	for i := 0; i < len(rel); i++ {
		if rel[i] == '/' {
			return rel[:i]
		}
	}

	return rel
}

func entrySize(ent *entry) int64 {
	return int64(len(ent.content)) + entryOverhead
}
