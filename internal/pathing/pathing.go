// Package pathing canonicalizes raw, possibly platform-specific paths into the
// mount-relative keys used by all other packages. A key always starts with a
// forward slash, never ends with one (except the root itself) and contains no
// "." or ".." components, so that two spellings of the same location always
// produce the same key.
package pathing

import (
	"fmt"
	"strings"
)

// Root is the canonical key of the mount root.
const Root = "/"

// Normalizer canonicalizes raw paths into mount-relative keys.
type Normalizer struct {
	// CaseInsensitive folds keys to lower case, for mounts backed by
	// case-insensitive filesystems.
	CaseInsensitive bool
}

// Normalize returns the canonical key for a raw path. Empty paths and paths
// containing NUL bytes fail with [ErrInvalidPath]. Separators are normalized
// to forward slashes, "." components are dropped and ".." components resolve
// upwards without ever escaping the mount root.
func (n Normalizer) Normalize(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("(pathing) %w: empty path", ErrInvalidPath)
	}

	if strings.ContainsRune(path, '\x00') {
		return "", fmt.Errorf("(pathing) %w: path contains NUL byte", ErrInvalidPath)
	}

	path = strings.ReplaceAll(path, `\`, "/")

	var parts []string
	for _, part := range strings.Split(path, "/") {
		switch part {
		case "", ".":
		case "..":
			if len(parts) > 0 {
				parts = parts[:len(parts)-1]
			}
		default:
			parts = append(parts, part)
		}
	}

	key := Root + strings.Join(parts, "/")

	if n.CaseInsensitive {
		key = strings.ToLower(key)
	}

	return key, nil
}

// Parent returns the key of the direct parent of a key. The parent of the root
// is the root itself.
func Parent(key string) string {
	if key == Root {
		return Root
	}

	idx := strings.LastIndex(key, "/")
	if idx <= 0 {
		return Root
	}

	return key[:idx]
}

// Base returns the last element of a key, or "/" for the root.
func Base(key string) string {
	if key == Root {
		return Root
	}

	idx := strings.LastIndex(key, "/")

	return key[idx+1:]
}

// Join appends a single child name to a key.
func Join(key, name string) string {
	if key == Root {
		return Root + name
	}

	return key + "/" + name
}

// IsRoot reports whether a key denotes the mount root.
func IsRoot(key string) bool {
	return key == Root
}

// IsAncestor reports whether ancestor strictly contains key, i.e. key is at
// least one level below ancestor. A key is not its own ancestor.
func IsAncestor(ancestor, key string) bool {
	if ancestor == key {
		return false
	}

	if ancestor == Root {
		return strings.HasPrefix(key, Root) && key != Root
	}

	return strings.HasPrefix(key, ancestor+"/")
}
