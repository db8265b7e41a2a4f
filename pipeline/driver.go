package pipeline

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/binref/refinery-go/chunk"
	"github.com/binref/refinery-go/handlers"
	"github.com/binref/refinery-go/multibin"
	"github.com/binref/refinery-go/refineryerr"
	"github.com/binref/refinery-go/unit"
)

// DefaultMaxRecursionDepth bounds eat/q sub-pipeline nesting (spec.md §9
// "enforce a configurable recursion depth cap").
const DefaultMaxRecursionDepth = 16

// Driver executes a compiled Stage tree over an input chunk sequence,
// managing frame depth across bracket groups (spec.md §4.5) and serving as
// the multibin.PipelineRunner for eat/q sub-pipeline handlers.
type Driver struct {
	RunID    uuid.UUID
	Registry *multibin.Registry
	MaxDepth int
}

// NewDriver creates a Driver with a fresh RunID (spec.md §9 correlation
// id for recursive sub-pipeline invocations) and the full built-in handler
// registry installed.
func NewDriver() *Driver {
	return &Driver{
		RunID:    uuid.New(),
		Registry: handlers.DefaultRegistry(),
		MaxDepth: DefaultMaxRecursionDepth,
	}
}

func (d *Driver) evaluator() unit.Evaluator {
	return unit.Evaluator{Registry: d.Registry, Runner: d, MaxDepth: d.MaxDepth}
}

// Evaluator exposes the Driver's Evaluator to callers outside this package,
// such as the cmd front end building units directly off a parsed Segment.
func (d *Driver) Evaluator() unit.Evaluator {
	return d.evaluator()
}

// RunBytes implements multibin.PipelineRunner: it parses spec as a
// pipeline, builds its Stage tree, and runs it over a single root chunk
// wrapping input, returning the first output chunk's payload (spec.md §9
// "recursive driver call on an in-memory pipe").
func (d *Driver) RunBytes(spec string, input []byte, depth int) ([]byte, error) {
	if depth > d.MaxDepth {
		return nil, fmt.Errorf("pipeline: recursion depth %d exceeds cap %d", depth, d.MaxDepth)
	}
	segments, err := Parse(spec)
	if err != nil {
		return nil, err
	}
	stages, err := BuildTree(segments, func(seg Segment) (unit.Unit, bool, error) { return Build(d.evaluator(), seg) })
	if err != nil {
		return nil, err
	}
	out, err := d.Run(stages, []*chunk.Chunk{chunk.NewChunk(input)}, 0)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0].Payload, nil
}

// Run executes stages over input at the given frame depth, returning the
// chunks that reach the end of the pipeline. Frame-aware units (FrameFilter)
// buffer their entire incoming set, bounded by unit.MaxFrameBuffer (spec.md
// §8 invariant: frame-aware filters never see a partial frame).
func (d *Driver) Run(stages []Stage, input []*chunk.Chunk, depth int) ([]*chunk.Chunk, error) {
	cur := input
	for _, stage := range stages {
		next, err := d.runStage(stage, cur, depth)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

func (d *Driver) runStage(stage Stage, input []*chunk.Chunk, depth int) ([]*chunk.Chunk, error) {
	if stage.IsGroup() {
		return d.runGroup(stage, input, depth)
	}
	if ff, ok := stage.Unit.(unit.FrameFilter); ok {
		// spec.md §3: invisible chunks are not processed by a unit; a
		// frame-aware filter only ever sees the visible subset, with
		// invisible chunks passed through unchanged afterward.
		var visible, invisible []*chunk.Chunk
		for _, c := range input {
			if c.Visible {
				visible = append(visible, c)
			} else {
				invisible = append(invisible, c)
			}
		}
		if err := checkFrameBuffer(visible); err != nil {
			return nil, refineryerr.NewFrame(err)
		}
		out, err := ff.Filter(visible)
		if err != nil {
			return nil, refineryerr.NewUnit(stage.Unit.Name(), err)
		}
		return append(out, invisible...), nil
	}

	var out []*chunk.Chunk
	for _, c := range input {
		if !c.Visible {
			// spec.md §3: an invisible chunk traverses a unit unchanged and
			// is not processed.
			out = append(out, c)
			continue
		}
		produced, err := d.invoke(stage, c)
		if err != nil {
			// Non-fatal per-chunk unit error: drop the chunk and continue
			// (spec.md §4.5 "the offending chunk is dropped, processing
			// continues"). The caller (cmd front end) decides whether to
			// log it, since that depends on -Q/-L which Run doesn't see.
			return nil, refineryerr.NewUnit(stage.Unit.Name(), err)
		}
		out = append(out, produced...)
	}
	return out, nil
}

func (d *Driver) invoke(stage Stage, c *chunk.Chunk) ([]*chunk.Chunk, error) {
	if stage.Reverse {
		rev, ok := stage.Unit.(unit.Reversible)
		if !ok {
			return nil, fmt.Errorf("%s: not reversible", stage.Unit.Name())
		}
		return rev.Reverse(c)
	}
	return stage.Unit.Process(c)
}

// runGroup executes a bracketed sub-pipeline once per incoming chunk,
// opening and closing a frame around each invocation (spec.md §4.5: "the
// driver opens a frame (OPEN token), runs u1 | u2 | ..., then closes the
// frame"). Each chunk enters the body with its own visibility unchanged —
// scoping only affects how the *outer* pipe treats the group's output
// (spec.md §4.5: "[| ... |] ... additionally makes the chunks invisible to
// the outer pipe unless a unit inside re-marks them visible").
func (d *Driver) runGroup(stage Stage, input []*chunk.Chunk, depth int) ([]*chunk.Chunk, error) {
	var out []*chunk.Chunk
	for idx, c := range input {
		child := c.Derive(c.Payload)
		child.ScopeDepth = depth + 1
		child.Path = append(append([]int(nil), c.Path...), idx)

		results, err := d.Run(stage.Inner, []*chunk.Chunk{child}, depth+1)
		if err != nil {
			return nil, err
		}
		for _, r := range results {
			r.SetMeta(r.Meta().CloseScope(depth + 1))
			if stage.Scoped {
				r.Visible = false
			}
		}
		out = append(out, results...)
	}
	return out, nil
}

// checkFrameBuffer enforces unit.MaxFrameBuffer against the total payload
// size a frame-aware unit would have to hold at once (SPEC_FULL.md §D.3).
func checkFrameBuffer(chunks []*chunk.Chunk) error {
	var total int
	for _, c := range chunks {
		total += len(c.Payload)
		if total > unit.MaxFrameBuffer {
			return fmt.Errorf("frame buffer exceeds %d bytes", unit.MaxFrameBuffer)
		}
	}
	return nil
}
