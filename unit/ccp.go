package unit

import (
	"github.com/binref/refinery-go/chunk"
	"github.com/binref/refinery-go/multibin"
)

// CcpUnit is the `ccp` ("concat-copy") unit: prepends the bytes produced by
// a multibin expression onto the payload. It exists to re-attach data a
// reverse-mode transform strips out — spec.md §8's round-trip scenario
// re-attaches an IV after `aes -R` by running
// `ccp md5:x | aes ... --iv cut:0:16`, so the cut downstream can recover it.
type CcpUnit struct {
	Base
	Eval Evaluator
	Prog *multibin.Program
}

func NewCcp(eval Evaluator, expr string) (*CcpUnit, error) {
	p, err := multibin.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &CcpUnit{Base: Base{"ccp"}, Eval: eval, Prog: p}, nil
}

func (u *CcpUnit) Process(c *chunk.Chunk) ([]*chunk.Chunk, error) {
	prefix, err := u.Eval.Eval(c, u.Prog)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(prefix)+len(c.Payload))
	out = append(out, prefix...)
	out = append(out, c.Payload...)
	return one(c.Derive(out))
}
