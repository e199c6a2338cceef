package realfs

import (
	"fmt"

	"golang.org/x/sys/unix"
)

type unixProvider interface {
	Statfs(path string, buf *unix.Statfs_t) error
}

// Unix is an implementation wrapping Unix operating system functions.
type Unix struct{}

// Statfs wraps around [unix.Statfs].
func (*Unix) Statfs(path string, buf *unix.Statfs_t) error {
	return unix.Statfs(path, buf)
}

// DiskStats holds capacity information for the filesystem holding a path.
type DiskStats struct {
	TotalSize int64
	FreeSpace int64
}

// Usage returns capacity information for the real filesystem holding the
// given path. Only meaningful for operating-system backed handlers.
func (h *Handler) Usage(path string) (DiskStats, error) {
	var stat unix.Statfs_t
	if err := h.unixOps.Statfs(path, &stat); err != nil {
		return DiskStats{}, fmt.Errorf("(realfs-usage) %w: %s: %w", ErrPassthroughIO, path, err)
	}

	return DiskStats{
		TotalSize: int64(stat.Blocks) * int64(stat.Bsize),
		FreeSpace: int64(stat.Bavail) * int64(stat.Bsize),
	}, nil
}
