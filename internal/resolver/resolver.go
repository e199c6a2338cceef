// Package resolver merges override store state with the real filesystem into
// a single verdict per path: serve from an override, pass through to the real
// filesystem, report the path as virtually deleted, or present a virtual
// directory. Platform backends never consult the store or the real
// filesystem directly; every decision runs through here.
package resolver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/veilfs/veilfs/internal/store"
)

// Verdict is the resolver's decision for a path.
type Verdict int

const (
	// VerdictPassthrough delegates the path entirely to the real
	// filesystem.
	VerdictPassthrough Verdict = iota

	// VerdictOverride serves the path from a file override; the real
	// filesystem is never touched for it.
	VerdictOverride

	// VerdictTombstoned reports the path as not found regardless of real
	// filesystem state.
	VerdictTombstoned

	// VerdictVirtualDir presents the path as a directory, either from an
	// explicit directory override or synthesized as the ancestor of
	// deeper overrides.
	VerdictVirtualDir
)

// String returns a human-readable name for the [Verdict].
func (v Verdict) String() string {
	switch v {
	case VerdictPassthrough:
		return "passthrough"
	case VerdictOverride:
		return "override"
	case VerdictTombstoned:
		return "tombstoned"
	case VerdictVirtualDir:
		return "virtual-directory"
	default:
		return "unknown"
	}
}

// Resolution is the outcome of resolving one path.
type Resolution struct {
	// Key is the canonical mount-relative key of the path.
	Key string

	// Verdict is the resolver's decision.
	Verdict Verdict

	// Entry holds the override entry for [VerdictOverride] and, when
	// explicit, for [VerdictVirtualDir].
	Entry store.Entry

	// RealPath is the corresponding path under the mount's source root.
	RealPath string
}

// DirEntry is one name in a merged directory listing.
type DirEntry struct {
	Name string
	Kind store.Kind
}

type overrideProvider interface {
	Normalize(path string) (string, error)
	Get(path string) (store.Entry, error)
	Children(path string) (map[string]store.Kind, error)
	HasOverrideBelow(path string) bool
}

type realProvider interface {
	Stat(path string) (os.FileInfo, error)
	ReadDir(path string) ([]os.FileInfo, error)
	Exists(path string) (bool, error)
	IsDir(path string) (bool, error)
}

// Resolver produces verdicts for one mount, consulting the override store
// first and the real filesystem second.
type Resolver struct {
	overrides  overrideProvider
	real       realProvider
	sourceRoot string
}

// NewResolver returns a pointer to a new [Resolver] for the given source
// root.
func NewResolver(overrides overrideProvider, real realProvider, sourceRoot string) *Resolver {
	return &Resolver{
		overrides:  overrides,
		real:       real,
		sourceRoot: sourceRoot,
	}
}

// Resolve produces the verdict for a single path. The real filesystem is not
// consulted here at all; passthrough verdicts defer that to the caller, which
// keeps override hits free of real I/O.
func (r *Resolver) Resolve(path string) (Resolution, error) {
	key, err := r.overrides.Normalize(path)
	if err != nil {
		return Resolution{}, fmt.Errorf("(resolver) %w", err)
	}

	res := Resolution{
		Key:      key,
		RealPath: r.RealPath(key),
	}

	ent, err := r.overrides.Get(key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return Resolution{}, fmt.Errorf("(resolver) %w", err)
		}

		if r.overrides.HasOverrideBelow(key) {
			res.Verdict = VerdictVirtualDir

			return res, nil
		}

		res.Verdict = VerdictPassthrough

		return res, nil
	}

	res.Entry = ent

	switch ent.Kind {
	case store.KindFile:
		res.Verdict = VerdictOverride
	case store.KindTombstone:
		res.Verdict = VerdictTombstoned
	case store.KindDirectory:
		res.Verdict = VerdictVirtualDir
	}

	return res, nil
}

// List produces the merged, name-ordered directory listing for a path. Real
// entries and override children are unioned; tombstoned names are excluded
// and an explicit override always wins over a same-named real entry.
func (r *Resolver) List(path string) ([]DirEntry, error) {
	res, err := r.Resolve(path)
	if err != nil {
		return nil, err
	}

	switch res.Verdict {
	case VerdictTombstoned:
		return nil, fmt.Errorf("(resolver-list) %w: %s", ErrNotFound, res.Key)

	case VerdictOverride:
		return nil, fmt.Errorf("(resolver-list) %w: %s", ErrNotDirectory, res.Key)
	}

	merged := make(map[string]store.Kind)

	realIsDir, err := r.real.IsDir(res.RealPath)
	if err != nil {
		return nil, fmt.Errorf("(resolver-list) %w", err)
	}

	if realIsDir {
		entries, err := r.real.ReadDir(res.RealPath)
		if err != nil {
			return nil, fmt.Errorf("(resolver-list) %w", err)
		}

		for _, info := range entries {
			kind := store.KindFile
			if info.IsDir() {
				kind = store.KindDirectory
			}
			merged[info.Name()] = kind
		}
	} else if res.Verdict == VerdictPassthrough {
		exists, err := r.real.Exists(res.RealPath)
		if err != nil {
			return nil, fmt.Errorf("(resolver-list) %w", err)
		}

		if !exists {
			return nil, fmt.Errorf("(resolver-list) %w: %s", ErrNotFound, res.Key)
		}

		return nil, fmt.Errorf("(resolver-list) %w: %s", ErrNotDirectory, res.Key)
	}

	children, err := r.overrides.Children(res.Key)
	if err != nil {
		return nil, fmt.Errorf("(resolver-list) %w", err)
	}

	for name, kind := range children {
		if kind == store.KindTombstone {
			delete(merged, name)

			continue
		}

		merged[name] = kind
	}

	listing := make([]DirEntry, 0, len(merged))
	for name, kind := range merged {
		listing = append(listing, DirEntry{Name: name, Kind: kind})
	}

	sort.Slice(listing, func(i, j int) bool {
		return listing[i].Name < listing[j].Name
	})

	return listing, nil
}

// RealPath maps a canonical key to its path under the mount's source root.
func (r *Resolver) RealPath(key string) string {
	return filepath.Join(r.sourceRoot, filepath.FromSlash(strings.TrimPrefix(key, "/")))
}
