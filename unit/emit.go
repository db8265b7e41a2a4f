package unit

import (
	"github.com/binref/refinery-go/chunk"
	"github.com/binref/refinery-go/multibin"
)

// EmitUnit is the `emit` source unit: it ignores its input chunk's payload
// (keeping its meta/path/visibility as the seed for derived chunks) and
// emits one chunk per compiled argument, evaluated against the input
// chunk's meta (spec.md §4.4 source units).
type EmitUnit struct {
	Base
	Eval  Evaluator
	Progs []*multibin.Program
}

// NewEmit compiles exprs once at construction time (spec.md §9 "compile
// multibin expressions once").
func NewEmit(eval Evaluator, exprs ...string) (*EmitUnit, error) {
	progs := make([]*multibin.Program, len(exprs))
	for i, e := range exprs {
		p, err := multibin.Compile(e)
		if err != nil {
			return nil, err
		}
		progs[i] = p
	}
	return &EmitUnit{Base: Base{"emit"}, Eval: eval, Progs: progs}, nil
}

func (u *EmitUnit) Process(c *chunk.Chunk) ([]*chunk.Chunk, error) {
	out := make([]*chunk.Chunk, 0, len(u.Progs))
	for _, p := range u.Progs {
		b, err := u.Eval.Eval(c, p)
		if err != nil {
			return nil, err
		}
		out = append(out, c.Derive(b))
	}
	return out, nil
}
