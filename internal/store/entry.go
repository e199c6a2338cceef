package store

import (
	"io/fs"
	"time"
)

// Kind describes what an override [Entry] represents at its path.
type Kind int

const (
	// KindFile is a whole-file content override.
	KindFile Kind = iota

	// KindDirectory is an override-created directory.
	KindDirectory

	// KindTombstone marks a real path as virtually deleted.
	KindTombstone
)

// String returns a human-readable name for the [Kind].
func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDirectory:
		return "directory"
	case KindTombstone:
		return "tombstone"
	default:
		return "unknown"
	}
}

// Entry is a single override record as returned by [Store.Get]. It is a
// detached copy of the stored state, callers never share memory with the
// store and a later mutation of the same path is not visible through it.
type Entry struct {
	// Kind describes what the entry represents.
	Kind Kind

	// Content holds the full (uncompressed) file content for [KindFile].
	Content []byte

	// Size is the uncompressed content size in bytes for [KindFile].
	Size int64

	// ModTime is the modification time presented for the entry.
	ModTime time.Time

	// Mode holds the permission bits presented for the entry.
	Mode fs.FileMode

	// Generation is the per-path mutation counter, strictly increasing
	// with every mutation of the path.
	Generation uint64

	// ContentHash is the BLAKE3 hash of the uncompressed content for
	// [KindFile].
	ContentHash [32]byte

	// Explicit reports, for [KindDirectory], whether the directory was
	// created by an explicit call rather than synthesized as the ancestor
	// of another override.
	Explicit bool
}

// Meta carries caller-supplied metadata for [Store.Set].
type Meta struct {
	// Mode holds the permission bits for the override; zero defaults to
	// [DefaultFileMode].
	Mode fs.FileMode

	// ModTime is the presented modification time; zero defaults to the
	// time of the call.
	ModTime time.Time
}

// entry is the internal stored form. Content may be zstd-compressed, in which
// case compressed is set and size holds the uncompressed length.
type entry struct {
	kind        Kind
	content     []byte
	size        int64
	modTime     time.Time
	mode        fs.FileMode
	generation  uint64
	contentHash [32]byte
	explicit    bool
	compressed  bool
}
