package store

import (
	"bytes"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veilfs/veilfs/internal/pathing"
	"github.com/zeebo/blake3"
)

func newTestStore(opts Options) *Store {
	return NewStore(opts)
}

// TestSetGet_Success verifies the set/get round-trip with incrementing
// generations.
func TestSetGet_Success(t *testing.T) {
	t.Parallel()

	s := newTestStore(Options{})

	gen1, err := s.Set("/notes.txt", []byte("hello"), Meta{})
	require.NoError(t, err)

	ent, err := s.Get("/notes.txt")
	require.NoError(t, err)
	assert.Equal(t, KindFile, ent.Kind)
	assert.Equal(t, []byte("hello"), ent.Content)
	assert.Equal(t, int64(5), ent.Size)
	assert.Equal(t, gen1, ent.Generation)
	assert.Equal(t, blake3.Sum256([]byte("hello")), ent.ContentHash)

	gen2, err := s.Set("/notes.txt", []byte("world"), Meta{})
	require.NoError(t, err)
	assert.Greater(t, gen2, gen1)

	ent, err = s.Get("/notes.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("world"), ent.Content)
	assert.Equal(t, gen2, ent.Generation)
}

// TestSet_Success_ContentDetached verifies that the store copies content on
// set and returns detached copies on get.
func TestSet_Success_ContentDetached(t *testing.T) {
	t.Parallel()

	s := newTestStore(Options{})

	buf := []byte("original")
	_, err := s.Set("/f", buf, Meta{})
	require.NoError(t, err)

	buf[0] = 'X'

	ent, err := s.Get("/f")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), ent.Content)

	ent.Content[0] = 'Y'

	again, err := s.Get("/f")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), again.Content)
}

// TestSet_Fail_InvalidPath verifies that unnormalizable paths are rejected.
func TestSet_Fail_InvalidPath(t *testing.T) {
	t.Parallel()

	s := newTestStore(Options{})

	_, err := s.Set("", []byte("x"), Meta{})
	require.ErrorIs(t, err, pathing.ErrInvalidPath)

	_, err = s.Set("/bad\x00path", []byte("x"), Meta{})
	require.ErrorIs(t, err, pathing.ErrInvalidPath)
}

// TestSet_Fail_Conflicts verifies the override conflict policy: a file
// override may neither shadow overrides below it nor sit below a file
// override.
func TestSet_Fail_Conflicts(t *testing.T) {
	t.Parallel()

	s := newTestStore(Options{})

	_, err := s.Set("/d/child", []byte("x"), Meta{})
	require.NoError(t, err)

	_, err = s.Set("/d", []byte("shadow"), Meta{})
	require.ErrorIs(t, err, ErrOverrideConflict)

	_, err = s.Set("/d/child/below", []byte("y"), Meta{})
	require.ErrorIs(t, err, ErrOverrideConflict)

	_, err = s.Set("/", []byte("root"), Meta{})
	require.ErrorIs(t, err, ErrOverrideConflict)
}

// TestSetDeleted_Success verifies tombstone insertion and idempotency.
func TestSetDeleted_Success(t *testing.T) {
	t.Parallel()

	s := newTestStore(Options{})

	require.NoError(t, s.SetDeleted("/gone.txt"))
	require.NoError(t, s.SetDeleted("/gone.txt"))

	ent, err := s.Get("/gone.txt")
	require.NoError(t, err)
	assert.Equal(t, KindTombstone, ent.Kind)
}

// TestRemove_Success verifies that removing an override returns the previous
// entry and restores the not-found state.
func TestRemove_Success(t *testing.T) {
	t.Parallel()

	s := newTestStore(Options{})

	_, err := s.Set("/f", []byte("data"), Meta{})
	require.NoError(t, err)

	prev, err := s.Remove("/f")
	require.NoError(t, err)
	assert.Equal(t, KindFile, prev.Kind)
	assert.Equal(t, []byte("data"), prev.Content)

	_, err = s.Get("/f")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = s.Remove("/f")
	require.ErrorIs(t, err, ErrNotFound)
}

// TestChildren_Success verifies one-level child derivation, including
// synthesized ancestor directories and tombstoned names.
func TestChildren_Success(t *testing.T) {
	t.Parallel()

	s := newTestStore(Options{})

	_, err := s.Set("/d/a.txt", []byte("a"), Meta{})
	require.NoError(t, err)
	_, err = s.Set("/d/sub/deep/b.txt", []byte("b"), Meta{})
	require.NoError(t, err)
	require.NoError(t, s.SetDeleted("/d/gone.txt"))
	require.NoError(t, s.SetDirectory("/d/empty"))

	children, err := s.Children("/d")
	require.NoError(t, err)
	assert.Equal(t, map[string]Kind{
		"a.txt":    KindFile,
		"sub":      KindDirectory,
		"gone.txt": KindTombstone,
		"empty":    KindDirectory,
	}, children)

	rootChildren, err := s.Children("/")
	require.NoError(t, err)
	assert.Equal(t, map[string]Kind{"d": KindDirectory}, rootChildren)

	none, err := s.Children("/elsewhere")
	require.NoError(t, err)
	assert.Empty(t, none)
}

// TestHasOverrideBelow_Success verifies strict-descendant detection.
func TestHasOverrideBelow_Success(t *testing.T) {
	t.Parallel()

	s := newTestStore(Options{})

	_, err := s.Set("/a/b/c", []byte("x"), Meta{})
	require.NoError(t, err)

	assert.True(t, s.HasOverrideBelow("/"))
	assert.True(t, s.HasOverrideBelow("/a"))
	assert.True(t, s.HasOverrideBelow("/a/b"))
	assert.False(t, s.HasOverrideBelow("/a/b/c"))
	assert.False(t, s.HasOverrideBelow("/other"))
}

// TestSet_Fail_StoreFull verifies the memory limit rejection.
func TestSet_Fail_StoreFull(t *testing.T) {
	t.Parallel()

	s := newTestStore(Options{MaxBytes: 1024})

	_, err := s.Set("/small", make([]byte, 256), Meta{})
	require.NoError(t, err)

	before := s.Generation()
	_, err = s.Set("/big", make([]byte, 2048), Meta{})
	require.ErrorIs(t, err, ErrStoreFull)

	// A rejected write must not advance the mutation ordinal.
	assert.Equal(t, before, s.Generation())

	// Replacing an entry frees its previous accounting first.
	_, err = s.Set("/small", make([]byte, 512), Meta{})
	require.NoError(t, err)
}

// TestCompression_Success verifies the transparent compression round-trip for
// content above the threshold.
func TestCompression_Success(t *testing.T) {
	t.Parallel()

	s := newTestStore(Options{CompressionThreshold: 64})

	content := bytes.Repeat([]byte("abcdefgh"), 512)

	_, err := s.Set("/big.bin", content, Meta{})
	require.NoError(t, err)

	// Highly repetitive content must be accounted below its raw size.
	assert.Less(t, s.MemoryUsage(), int64(len(content)))

	ent, err := s.Get("/big.bin")
	require.NoError(t, err)
	assert.Equal(t, content, ent.Content)
	assert.Equal(t, int64(len(content)), ent.Size)
	assert.Equal(t, blake3.Sum256(content), ent.ContentHash)
}

// TestCounts_Success verifies per-kind entry counting and memory teardown.
func TestCounts_Success(t *testing.T) {
	t.Parallel()

	s := newTestStore(Options{})

	_, err := s.Set("/f1", []byte("x"), Meta{})
	require.NoError(t, err)
	_, err = s.Set("/f2", []byte("y"), Meta{})
	require.NoError(t, err)
	require.NoError(t, s.SetDeleted("/t1"))
	require.NoError(t, s.SetDirectory("/d1"))

	files, dirs, tombstones := s.Counts()
	assert.Equal(t, 2, files)
	assert.Equal(t, 1, dirs)
	assert.Equal(t, 1, tombstones)
	assert.Equal(t, 4, s.Len())
	assert.Positive(t, s.MemoryUsage())

	s.Clear()

	assert.Equal(t, 0, s.Len())
	assert.Zero(t, s.MemoryUsage())
}

// TestConcurrentWriters_Success verifies that a reader observes exactly one
// of N concurrently written values, never a byte-level mix.
func TestConcurrentWriters_Success(t *testing.T) {
	t.Parallel()

	s := newTestStore(Options{})

	const writers = 16

	valid := make(map[string]struct{}, writers)
	payloads := make([][]byte, writers)
	for i := 0; i < writers; i++ {
		payloads[i] = bytes.Repeat([]byte{byte('A' + i)}, 4096)
		valid[string(payloads[i])] = struct{}{}
	}

	var wg sync.WaitGroup

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(content []byte) {
			defer wg.Done()

			_, err := s.Set("/contested", content, Meta{})
			assert.NoError(t, err)
		}(payloads[i])
	}

	stop := make(chan struct{})
	go func() {
		defer close(stop)

		for i := 0; i < 100; i++ {
			ent, err := s.Get("/contested")
			if err != nil {
				continue
			}
			_, known := valid[string(ent.Content)]
			assert.True(t, known, "reader observed a torn write")
		}
	}()

	wg.Wait()
	<-stop

	ent, err := s.Get("/contested")
	require.NoError(t, err)
	_, known := valid[string(ent.Content)]
	assert.True(t, known)
}

// TestGeneration_Success verifies that generations order mutations across
// paths.
func TestGeneration_Success(t *testing.T) {
	t.Parallel()

	s := newTestStore(Options{})

	var last uint64
	for i := 0; i < 10; i++ {
		gen, err := s.Set(fmt.Sprintf("/f%d", i), []byte("x"), Meta{})
		require.NoError(t, err)
		assert.Greater(t, gen, last)
		last = gen
	}
}
