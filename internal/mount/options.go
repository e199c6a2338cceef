package mount

// Options configures the behavior of one mount.
type Options struct {
	// ReadOnly rejects write and delete interception on the mount.
	ReadOnly bool

	// CaseInsensitive folds override keys to lower case, for mounts over
	// case-insensitive source trees.
	CaseInsensitive bool

	// MaxOverrideBytes limits the override store's accounted memory
	// usage; zero means unlimited.
	MaxOverrideBytes int64

	// CompressionThreshold is the content size in bytes at which override
	// content is stored compressed; zero disables compression.
	CompressionThreshold int
}
