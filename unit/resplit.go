package unit

import (
	"bytes"

	"github.com/binref/refinery-go/chunk"
	"github.com/binref/refinery-go/multibin"
)

// ResplitUnit is the `resplit` unit: a splitter that breaks the payload on
// a multibin-evaluated delimiter, emitting one derived chunk per field in
// input order (spec.md §4.4 "splitter" row; §8 path ordering invariant
// applies to the chunks it emits).
type ResplitUnit struct {
	Base
	Eval Evaluator
	Prog *multibin.Program
}

func NewResplit(eval Evaluator, delimExpr string) (*ResplitUnit, error) {
	p, err := multibin.Compile(delimExpr)
	if err != nil {
		return nil, err
	}
	return &ResplitUnit{Base: Base{"resplit"}, Eval: eval, Prog: p}, nil
}

func (u *ResplitUnit) Process(c *chunk.Chunk) ([]*chunk.Chunk, error) {
	delim, err := u.Eval.Eval(c, u.Prog)
	if err != nil {
		return nil, err
	}
	if len(delim) == 0 {
		return one(c)
	}
	fields := bytes.Split(c.Payload, delim)
	out := make([]*chunk.Chunk, 0, len(fields))
	for _, f := range fields {
		out = append(out, c.Derive(f))
	}
	return out, nil
}
