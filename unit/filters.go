package unit

import (
	"bytes"
	"sort"

	"github.com/binref/refinery-go/chunk"
)

// DedupUnit is the `dedup` unit: a frame-aware filter that drops chunks
// whose payload has already been seen within the current frame, preserving
// first-occurrence order (spec.md §4.4 frame-aware example).
type DedupUnit struct {
	Base
}

func NewDedup() *DedupUnit { return &DedupUnit{Base: Base{"dedup"}} }

// Process is never called directly by the driver for a FrameFilter unit
// (the driver buffers the frame and calls Filter instead); it is provided
// so DedupUnit also satisfies plain Unit for introspection/--help.
func (u *DedupUnit) Process(c *chunk.Chunk) ([]*chunk.Chunk, error) { return one(c) }

func (u *DedupUnit) Filter(frame []*chunk.Chunk) ([]*chunk.Chunk, error) {
	seen := make(map[string]bool, len(frame))
	out := make([]*chunk.Chunk, 0, len(frame))
	for _, c := range frame {
		key := string(c.Payload)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out, nil
}

// SortedUnit is the `sorted` unit: a frame-aware filter that reorders the
// frame's chunks by payload byte order (spec.md §4.4 frame-aware example).
type SortedUnit struct {
	Base
}

func NewSorted() *SortedUnit { return &SortedUnit{Base: Base{"sorted"}} }

func (u *SortedUnit) Process(c *chunk.Chunk) ([]*chunk.Chunk, error) { return one(c) }

func (u *SortedUnit) Filter(frame []*chunk.Chunk) ([]*chunk.Chunk, error) {
	out := append([]*chunk.Chunk(nil), frame...)
	sort.SliceStable(out, func(i, j int) bool {
		return bytes.Compare(out[i].Payload, out[j].Payload) < 0
	})
	return out, nil
}
