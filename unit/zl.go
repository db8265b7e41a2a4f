package unit

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"

	"github.com/binref/refinery-go/chunk"
)

// ZlUnit is the `zl` unit: zlib inflate/deflate, reversible. No example
// repo in the pack ships a compression codec, so this stays on the
// standard library's compress/zlib rather than inventing a dependency
// (DESIGN.md justifies the choice).
type ZlUnit struct {
	Base
	Level int
}

func NewZl(level int) *ZlUnit {
	if level == 0 {
		level = zlib.DefaultCompression
	}
	return &ZlUnit{Base: Base{"zl"}, Level: level}
}

func (u *ZlUnit) Process(c *chunk.Chunk) ([]*chunk.Chunk, error) {
	r, err := zlib.NewReader(bytes.NewReader(c.Payload))
	if err != nil {
		return nil, fmt.Errorf("zl: %w", err)
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("zl: %w", err)
	}
	return one(c.Derive(out))
}

func (u *ZlUnit) Reverse(c *chunk.Chunk) ([]*chunk.Chunk, error) {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, u.Level)
	if err != nil {
		return nil, fmt.Errorf("zl: %w", err)
	}
	if _, err := w.Write(c.Payload); err != nil {
		return nil, fmt.Errorf("zl: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("zl: %w", err)
	}
	return one(c.Derive(buf.Bytes()))
}
