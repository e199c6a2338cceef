// Package realfs is the single seam through which the core reads the real
// filesystem under a mount's source root. The core never writes through this
// package; all mutations land in the override store. Backed by [afero.Fs], so
// production runs against the operating system while tests run against an
// in-memory filesystem.
package realfs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/afero"
)

// Handler wraps an [afero.Fs] with the error semantics the resolver needs:
// not-found is reported distinctly from all other I/O failures, which wrap
// [ErrPassthroughIO] together with the offending path.
type Handler struct {
	fs      afero.Fs
	unixOps unixProvider
}

// NewHandler returns a pointer to a new [Handler] on top of the given
// [afero.Fs].
func NewHandler(fsys afero.Fs) *Handler {
	return &Handler{
		fs:      fsys,
		unixOps: &Unix{},
	}
}

// ReadFile returns the full content of a real file.
func (h *Handler) ReadFile(path string) ([]byte, error) {
	content, err := afero.ReadFile(h.fs, path)
	if err != nil {
		return nil, wrapIO("read", path, err)
	}

	return content, nil
}

// Stat returns metadata for a real path.
func (h *Handler) Stat(path string) (os.FileInfo, error) {
	info, err := h.fs.Stat(path)
	if err != nil {
		return nil, wrapIO("stat", path, err)
	}

	return info, nil
}

// ReadDir returns the sorted entries of a real directory.
func (h *Handler) ReadDir(path string) ([]os.FileInfo, error) {
	entries, err := afero.ReadDir(h.fs, path)
	if err != nil {
		return nil, wrapIO("readdir", path, err)
	}

	return entries, nil
}

// Exists reports whether a real path exists, without treating absence as an
// error.
func (h *Handler) Exists(path string) (bool, error) {
	_, err := h.fs.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}

		return false, wrapIO("stat", path, err)
	}

	return true, nil
}

// IsDir reports whether a real path exists and is a directory.
func (h *Handler) IsDir(path string) (bool, error) {
	info, err := h.fs.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}

		return false, wrapIO("stat", path, err)
	}

	return info.IsDir(), nil
}

// wrapIO maps a real-filesystem error into the core taxonomy: absence becomes
// [ErrNotFound], everything else wraps [ErrPassthroughIO] verbatim.
func wrapIO(op, path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("(realfs-%s) %w: %s", op, ErrNotFound, path)
	}

	return fmt.Errorf("(realfs-%s) %w: %s: %w", op, ErrPassthroughIO, path, err)
}
