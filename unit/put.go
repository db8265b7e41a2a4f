package unit

import (
	"github.com/binref/refinery-go/chunk"
	"github.com/binref/refinery-go/multibin"
)

// PutUnit is the `put` unit: binds a meta variable to a multibin-evaluated
// byte value on each chunk, at the chunk's current scope depth, and passes
// the payload through unchanged (spec.md §4.4 "units ... set/unset/scoped
// meta").
type PutUnit struct {
	Base
	Name string
	Eval Evaluator
	Prog *multibin.Program
}

func NewPut(eval Evaluator, name, valueExpr string) (*PutUnit, error) {
	p, err := multibin.Compile(valueExpr)
	if err != nil {
		return nil, err
	}
	return &PutUnit{Base: Base{"put"}, Name: name, Eval: eval, Prog: p}, nil
}

func (u *PutUnit) Process(c *chunk.Chunk) ([]*chunk.Chunk, error) {
	b, err := u.Eval.Eval(c, u.Prog)
	if err != nil {
		return nil, err
	}
	out := c.Derive(c.Payload)
	if err := out.Meta().Set(u.Name, chunk.BytesValue(b), out.ScopeDepth); err != nil {
		return nil, err
	}
	return one(out)
}
