// Package unit implements the Binary Refinery unit contract (spec.md
// §4.4): the process/reverse/filter state machine every built-in
// transform, source, and filter satisfies, plus the built-in units
// themselves.
package unit

import (
	"github.com/binref/refinery-go/chunk"
)

// MaxFrameBuffer bounds how much payload a frame-aware unit (one
// implementing FrameFilter) may buffer while collecting a full frame before
// it can run its filter (SPEC_FULL.md §D.3). Exceeding it escalates a
// would-be UnitError into a fatal FrameError, since a runaway frame-aware
// buffer is an unbounded-memory condition the driver cannot safely allow.
const MaxFrameBuffer = 64 << 20 // 64 MiB

// Unit is the contract every built-in transform satisfies (spec.md §4.4).
// Process is the primary transformation; its result sequence may be empty
// (filter), one chunk (transformer), or many (splitter), and emission is
// expected to be lazy — implementations should not buffer more than one
// chunk's worth of state unless they also implement FrameFilter.
type Unit interface {
	Name() string
	Process(c *chunk.Chunk) ([]*chunk.Chunk, error)
}

// Reversible is implemented by units that can run in reverse mode (-R).
// Process and Reverse are genuine inverses for a reversible unit: piping a
// chunk through Reverse then Process reproduces the original bytes.
type Reversible interface {
	Unit
	Reverse(c *chunk.Chunk) ([]*chunk.Chunk, error)
}

// FrameFilter is implemented by units that re-order or drop chunks across
// a whole frame rather than one at a time (e.g. dedup, sorted). The driver
// buffers one full frame (bounded by MaxFrameBuffer) before calling Filter
// (spec.md §4.4 "frame-aware").
type FrameFilter interface {
	Unit
	Filter(frame []*chunk.Chunk) ([]*chunk.Chunk, error)
}

// Base gives a concrete unit its Name() for free; units that are not
// Reversible simply don't implement Reverse, so Base carries no default
// Reverse implementation (a unit either implements Reversible or it
// doesn't — there is no silent fallback).
type Base struct {
	UnitName string
}

func (b Base) Name() string { return b.UnitName }

// one is a small helper used by most Process implementations to wrap a
// single output chunk.
func one(c *chunk.Chunk) ([]*chunk.Chunk, error) { return []*chunk.Chunk{c}, nil }

// none is the canonical empty result for a unit acting as a pure filter.
func none() ([]*chunk.Chunk, error) { return nil, nil }
