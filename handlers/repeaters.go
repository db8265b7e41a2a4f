package handlers

import (
	"fmt"
	"strconv"

	"github.com/binref/refinery-go/multibin"
)

// repHandler repeats its input args[0] times: `rep[5]:ab` -> "ababababab"
// (spec.md §4.3 repeater row). Only args[0] is read; with no input the
// result is empty.
type repHandler struct{}

func Rep() multibin.Handler { return repHandler{} }

func (repHandler) Name() string { return "rep" }

func (repHandler) Eval(ctx *multibin.Context, args []string, input []byte) ([]byte, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("rep: requires a repeat count argument")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 0 {
		return nil, fmt.Errorf("rep: invalid repeat count %q", args[0])
	}
	out := make([]byte, 0, len(input)*n)
	for i := 0; i < n; i++ {
		out = append(out, input...)
	}
	return out, nil
}

// accuHandler is a pure source handler: it synthesizes one decimal-ASCII
// value per evaluation from a per-context monotonic counter named by
// args[0] (spec.md §4.3 "accu[expr]" synthesizing bytes with no payload).
// Distinct counter names let one expression use more than one accumulator.
type accuHandler struct{}

func Accu() multibin.Handler { return accuHandler{} }

func (accuHandler) Name() string { return "accu" }

func (accuHandler) Eval(ctx *multibin.Context, args []string, input []byte) ([]byte, error) {
	key := "accu"
	if len(args) > 0 && args[0] != "" {
		key = args[0]
	}
	v := ctx.NextAccu(key)
	return []byte(strconv.FormatInt(v, 10)), nil
}
