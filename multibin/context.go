package multibin

import (
	"github.com/binref/refinery-go/chunk"
)

// PipelineRunner lets the eat/q sub-pipeline handlers recurse into the
// driver without multibin importing the pipeline package (which itself
// depends on multibin), per spec.md §9 "recursive driver call on an
// in-memory pipe".
type PipelineRunner interface {
	// RunBytes executes the pipeline described by spec over input and
	// returns the bytes produced by its final stage. depth is the current
	// recursion depth, enforced against a cap by the implementation.
	RunBytes(spec string, input []byte, depth int) ([]byte, error)
}

// Context carries everything a Handler needs to evaluate one atom: the
// chunk currently under evaluation (so cut/copy can mutate it, var can read
// its meta, and reserved names like size/magic resolve correctly), the
// handler registry (so eat/q and nested compiles can look handlers back
// up), a PipelineRunner, and bookkeeping for the recursion depth cap.
type Context struct {
	Chunk    *chunk.Chunk
	ReadDepth int
	Registry *Registry
	Runner   PipelineRunner

	Depth    int // current eat/q recursion depth
	MaxDepth int // recursion cap (spec.md §9)

	// accu holds per-Context monotonic counters for the accu repeater
	// handler, keyed by the counter's bracket argument so distinct counters
	// in the same expression don't collide.
	accu map[string]int64
}

// NewContext creates a Context for evaluating against c, with no recursion
// yet performed.
func NewContext(c *chunk.Chunk, reg *Registry, runner PipelineRunner, maxDepth int) *Context {
	return &Context{
		Chunk:     c,
		ReadDepth: c.ScopeDepth,
		Registry:  reg,
		Runner:    runner,
		MaxDepth:  maxDepth,
		accu:      make(map[string]int64),
	}
}

// NextAccu returns the next value of the named counter and advances it.
func (ctx *Context) NextAccu(key string) int64 {
	v := ctx.accu[key]
	ctx.accu[key] = v + 1
	return v
}

