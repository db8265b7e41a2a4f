package unit

import (
	"github.com/binref/refinery-go/chunk"
	"github.com/binref/refinery-go/multibin"
)

// Evaluator bundles what every unit needs to turn a compiled multibin
// Program into bytes for one chunk: the handler registry, a sub-pipeline
// runner for eat/q, and the recursion depth cap (spec.md §4.4 "argument
// binding happens once per unit instance ... handlers that reference
// var:... are re-evaluated per chunk").
type Evaluator struct {
	Registry *multibin.Registry
	Runner   multibin.PipelineRunner
	MaxDepth int
}

// Eval runs prog against c.
func (e Evaluator) Eval(c *chunk.Chunk, prog *multibin.Program) ([]byte, error) {
	ctx := multibin.NewContext(c, e.Registry, e.Runner, e.MaxDepth)
	return prog.Eval(ctx)
}

// MustCompile panics on a malformed literal expression baked into a test
// fixture or a built-in default; it is never used on user-supplied argv.
func MustCompile(expr string) *multibin.Program {
	p, err := multibin.Compile(expr)
	if err != nil {
		panic(err)
	}
	return p
}
