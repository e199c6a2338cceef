package realfs

import (
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func newMemHandler(t *testing.T) (*Handler, afero.Fs) {
	t.Helper()

	fsys := afero.NewMemMapFs()

	return NewHandler(fsys), fsys
}

// TestReadFile_Success verifies reading real file content.
func TestReadFile_Success(t *testing.T) {
	t.Parallel()

	h, fsys := newMemHandler(t)
	require.NoError(t, afero.WriteFile(fsys, "/src/a.txt", []byte("real"), 0o644))

	content, err := h.ReadFile("/src/a.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("real"), content)
}

// TestReadFile_Fail_NotFound verifies that absence maps to [ErrNotFound].
func TestReadFile_Fail_NotFound(t *testing.T) {
	t.Parallel()

	h, _ := newMemHandler(t)

	_, err := h.ReadFile("/src/missing.txt")
	require.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrPassthroughIO)
}

// TestStat_Success verifies metadata lookups.
func TestStat_Success(t *testing.T) {
	t.Parallel()

	h, fsys := newMemHandler(t)
	require.NoError(t, afero.WriteFile(fsys, "/src/a.txt", []byte("12345"), 0o644))

	info, err := h.Stat("/src/a.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(5), info.Size())
	assert.False(t, info.IsDir())
}

// TestReadDir_Success verifies directory listings.
func TestReadDir_Success(t *testing.T) {
	t.Parallel()

	h, fsys := newMemHandler(t)
	require.NoError(t, afero.WriteFile(fsys, "/src/d/a", []byte("a"), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "/src/d/b", []byte("b"), 0o644))

	entries, err := h.ReadDir("/src/d")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].Name())
	assert.Equal(t, "b", entries[1].Name())
}

// TestExistsIsDir_Success verifies existence and kind checks without error on
// absence.
func TestExistsIsDir_Success(t *testing.T) {
	t.Parallel()

	h, fsys := newMemHandler(t)
	require.NoError(t, fsys.MkdirAll("/src/d", 0o755))
	require.NoError(t, afero.WriteFile(fsys, "/src/f", []byte("x"), 0o644))

	exists, err := h.Exists("/src/d")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = h.Exists("/src/missing")
	require.NoError(t, err)
	assert.False(t, exists)

	isDir, err := h.IsDir("/src/d")
	require.NoError(t, err)
	assert.True(t, isDir)

	isDir, err = h.IsDir("/src/f")
	require.NoError(t, err)
	assert.False(t, isDir)

	isDir, err = h.IsDir("/src/missing")
	require.NoError(t, err)
	assert.False(t, isDir)
}

// fakeUnix is a fake implementation of unixProvider.
type fakeUnix struct {
	blocks uint64
	bavail uint64
	bsize  int64
	err    error
}

func (f *fakeUnix) Statfs(_ string, buf *unix.Statfs_t) error {
	if f.err != nil {
		return f.err
	}

	buf.Blocks = f.blocks
	buf.Bavail = f.bavail
	buf.Bsize = f.bsize

	return nil
}

// TestUsage_Success verifies disk capacity reporting.
func TestUsage_Success(t *testing.T) {
	t.Parallel()

	h, _ := newMemHandler(t)
	h.unixOps = &fakeUnix{blocks: 1000, bavail: 250, bsize: 4096}

	stats, err := h.Usage("/src")
	require.NoError(t, err)
	assert.Equal(t, int64(4096000), stats.TotalSize)
	assert.Equal(t, int64(1024000), stats.FreeSpace)
}

// TestUsage_Fail verifies that syscall failures wrap [ErrPassthroughIO].
func TestUsage_Fail(t *testing.T) {
	t.Parallel()

	h, _ := newMemHandler(t)
	h.unixOps = &fakeUnix{err: errors.New("no such device")}

	_, err := h.Usage("/src")
	require.ErrorIs(t, err, ErrPassthroughIO)
}
