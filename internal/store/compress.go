package store

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// compressor transparently zstd-compresses file content at or above a
// configured threshold. A zero threshold disables compression entirely.
type compressor struct {
	threshold int
	enc       *zstd.Encoder
	dec       *zstd.Decoder
}

func newCompressor(threshold int) *compressor {
	if threshold <= 0 {
		return &compressor{}
	}

	// Both EncodeAll and DecodeAll are safe for concurrent use on a
	// single encoder/decoder pair.
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return &compressor{}
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return &compressor{}
	}

	return &compressor{
		threshold: threshold,
		enc:       enc,
		dec:       dec,
	}
}

// compress returns the storable form of content and whether it was
// compressed. Content below the threshold, or content that does not shrink,
// is stored as a plain copy.
func (c *compressor) compress(content []byte) ([]byte, bool) {
	if c.enc == nil || c.threshold <= 0 || len(content) < c.threshold {
		stored := make([]byte, len(content))
		copy(stored, content)

		return stored, false
	}

	compressed := c.enc.EncodeAll(content, make([]byte, 0, len(content)/2))
	if len(compressed) >= len(content) {
		stored := make([]byte, len(content))
		copy(stored, content)

		return stored, false
	}

	return compressed, true
}

// decompress returns a detached copy of the uncompressed content.
func (c *compressor) decompress(stored []byte, size int64, compressed bool) ([]byte, error) {
	if !compressed {
		content := make([]byte, len(stored))
		copy(content, stored)

		return content, nil
	}

	if c.dec == nil {
		return nil, fmt.Errorf("compressed entry without decoder")
	}

	content, err := c.dec.DecodeAll(stored, make([]byte, 0, size))
	if err != nil {
		return nil, fmt.Errorf("failed to decompress entry: %w", err)
	}

	return content, nil
}
