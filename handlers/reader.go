package handlers

import (
	"fmt"

	"github.com/binref/refinery-go/multibin"
)

// varHandler implements `var:NAME`, returning meta[NAME] as bytes (spec.md
// §4.3 reader row). Its input is the literal NAME token to its right, not
// payload bytes: var is a source handler, re-evaluated per chunk so
// `var:…` expressions track the current chunk's meta (spec.md §4.4).
type varHandler struct{}

func Var() multibin.Handler { return varHandler{} }

func (varHandler) Name() string { return "var" }

func (varHandler) Eval(ctx *multibin.Context, args []string, input []byte) ([]byte, error) {
	name := string(input)
	v, ok := ctx.Chunk.Get(name, ctx.ReadDepth)
	if !ok {
		return nil, fmt.Errorf("var: %q is not bound", name)
	}
	return v.AsBytes()
}
