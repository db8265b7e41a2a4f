package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/binref/refinery-go/multibin"
)

// resolveSliceField turns one cut/copy slice-spec field into an index against
// a payload of length n, per the Open Question resolution recorded in
// SPEC_FULL.md §D.2: empty means "unspecified" (caller supplies the
// default), a decimal literal (optionally signed) is used directly with
// negative values counting from the end (Python slice convention), and any
// other identifier-shaped field is resolved as a meta variable lookup on the
// current chunk, parsed as a decimal integer.
func resolveSliceField(ctx *multibin.Context, field string, n, def int) (int, error) {
	if field == "" {
		return def, nil
	}
	if v, err := strconv.Atoi(field); err == nil {
		if v < 0 {
			v += n
		}
		return clamp(v, 0, n), nil
	}
	val, ok := ctx.Chunk.Get(field, ctx.ReadDepth)
	if !ok {
		return 0, fmt.Errorf("slice: %q is neither an integer nor a bound meta variable", field)
	}
	b, err := val.AsBytes()
	if err != nil {
		return 0, fmt.Errorf("slice: %q: %w", field, err)
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil {
		return 0, fmt.Errorf("slice: meta %q is not an integer: %w", field, err)
	}
	if v < 0 {
		v += n
	}
	return clamp(v, 0, n), nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// sliceBounds resolves a slicer atom's Args (up to two fields: start, end)
// against the current chunk's payload length.
func sliceBounds(ctx *multibin.Context, args []string, n int) (start, end int, err error) {
	startField, endField := "", ""
	switch len(args) {
	case 0:
	case 1:
		startField = args[0]
	default:
		startField, endField = args[0], args[1]
	}
	start, err = resolveSliceField(ctx, startField, n, 0)
	if err != nil {
		return 0, 0, err
	}
	end, err = resolveSliceField(ctx, endField, n, n)
	if err != nil {
		return 0, 0, err
	}
	if end < start {
		start, end = end, start
	}
	return start, end, nil
}

// copyHandler extracts payload[start:end] without disturbing the chunk.
type copyHandler struct{}

func Copy() multibin.Handler { return copyHandler{} }

func (copyHandler) Name() string { return "copy" }

func (copyHandler) Eval(ctx *multibin.Context, args []string, input []byte) ([]byte, error) {
	payload := ctx.Chunk.Payload
	start, end, err := sliceBounds(ctx, args, len(payload))
	if err != nil {
		return nil, fmt.Errorf("copy: %w", err)
	}
	out := make([]byte, end-start)
	copy(out, payload[start:end])
	return out, nil
}

// cutHandler extracts payload[start:end] and removes that region from the
// enclosing chunk (spec.md §4.3 "and, for cut, removes it from the
// enclosing input chunk"), so a later unit sees the remainder.
type cutHandler struct{}

func Cut() multibin.Handler { return cutHandler{} }

func (cutHandler) Name() string { return "cut" }

func (cutHandler) Eval(ctx *multibin.Context, args []string, input []byte) ([]byte, error) {
	payload := ctx.Chunk.Payload
	start, end, err := sliceBounds(ctx, args, len(payload))
	if err != nil {
		return nil, fmt.Errorf("cut: %w", err)
	}
	out := make([]byte, end-start)
	copy(out, payload[start:end])

	remainder := make([]byte, 0, len(payload)-(end-start))
	remainder = append(remainder, payload[:start]...)
	remainder = append(remainder, payload[end:]...)
	ctx.Chunk.Payload = remainder
	return out, nil
}
