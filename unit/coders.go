package unit

import (
	"github.com/binref/refinery-go/chunk"
	"github.com/binref/refinery-go/handlers"
	"github.com/binref/refinery-go/multibin"
)

// coderUnit wraps one of the decoder handlers (hex, b64, b85, url, esc) as
// a standalone reversible unit: forward mode decodes the chunk's payload,
// reverse mode encodes it (spec.md §4.3 decoder row, lifted to a top-level
// unit the way `ef`/emit source units are — each of these five decoder
// handlers doubles as a one-shot CLI unit per spec.md §6's
// `<unit> [switches] [args]` invocation form).
type coderUnit struct {
	Base
	decode func([]byte) ([]byte, error)
	encode func([]byte) []byte
}

func (u coderUnit) Process(c *chunk.Chunk) ([]*chunk.Chunk, error) {
	out, err := u.decode(c.Payload)
	if err != nil {
		return nil, err
	}
	return one(c.Derive(out))
}

func (u coderUnit) Reverse(c *chunk.Chunk) ([]*chunk.Chunk, error) {
	return one(c.Derive(u.encode(c.Payload)))
}

func wrapHandlerDecode(h multibin.Handler) func([]byte) ([]byte, error) {
	return func(b []byte) ([]byte, error) {
		ctx := multibin.NewContext(chunk.NewChunk(b), nil, nil, 1)
		return h.Eval(ctx, nil, b)
	}
}

func Hex() Reversible {
	return coderUnit{Base: Base{"hex"}, decode: wrapHandlerDecode(handlers.Hex()), encode: handlers.EncodeHex}
}

func B64() Reversible {
	return coderUnit{Base: Base{"b64"}, decode: wrapHandlerDecode(handlers.B64()), encode: func(b []byte) []byte { return handlers.EncodeB64(b, false) }}
}

func B85() Reversible {
	return coderUnit{Base: Base{"b85"}, decode: wrapHandlerDecode(handlers.B85()), encode: handlers.EncodeB85}
}

func URL() Reversible {
	return coderUnit{Base: Base{"url"}, decode: wrapHandlerDecode(handlers.URL()), encode: handlers.EncodeURL}
}

func Esc() Reversible {
	return coderUnit{Base: Base{"esc"}, decode: wrapHandlerDecode(handlers.Esc()), encode: handlers.EncodeEsc}
}
