package handlers

import (
	"fmt"

	"github.com/binref/refinery-go/multibin"
)

// eatHandler runs a named sub-pipeline over the *current chunk's own
// payload* in memory and returns whatever bytes it produces (spec.md §4.3
// "runs a multibin-named unit over payload in memory"). `eat:b64|hex`
// pipes the chunk's payload through base64-decode then hex-decode and
// yields the result, without altering the chunk itself.
type eatHandler struct{}

func Eat() multibin.Handler { return eatHandler{} }

func (eatHandler) Name() string { return "eat" }

func (eatHandler) Eval(ctx *multibin.Context, args []string, spec []byte) ([]byte, error) {
	return runSubPipeline(ctx, string(spec), ctx.Chunk.Payload)
}

// qHandler runs a named sub-pipeline over an arbitrary computed byte value
// (the result of the atom to its right in the expression) rather than the
// chunk's own payload, e.g. `q[hex]:var:keyhex` decodes the hex text stored
// in the keyhex meta variable. The pipeline spec is the first bracket
// argument; without one, Eval returns an error.
type qHandler struct{}

func Q() multibin.Handler { return qHandler{} }

func (qHandler) Name() string { return "q" }

func (qHandler) Eval(ctx *multibin.Context, args []string, input []byte) ([]byte, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("q: requires a pipeline spec bracket argument, e.g. q[hex]:...")
	}
	return runSubPipeline(ctx, args[0], input)
}

func runSubPipeline(ctx *multibin.Context, spec string, input []byte) ([]byte, error) {
	if ctx.Depth+1 > ctx.MaxDepth {
		return nil, fmt.Errorf("multibin: recursion depth %d exceeds cap %d", ctx.Depth+1, ctx.MaxDepth)
	}
	if ctx.Runner == nil {
		return nil, fmt.Errorf("eat/q: no pipeline runner configured")
	}
	return ctx.Runner.RunBytes(spec, input, ctx.Depth+1)
}
