package unit

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/binref/refinery-go/chunk"
)

// PackUnit is the `pack` unit: packs whitespace-separated hex tokens in the
// payload, each with an optional 0x/0X prefix, into their binary form
// ("41 42 43" -> "ABC"); any token that is not hex is an error. Reverse
// writes one lowercase two-digit token per byte, without prefix, joined by
// Sep (spec.md §4.3 envisions handler-style hex decode/encode; `pack` is the
// token-oriented sibling for payloads written as separate hex tokens rather
// than one hex string).
type PackUnit struct {
	Base
	Sep string
}

func NewPack(sep string) *PackUnit {
	if sep == "" {
		sep = " "
	}
	return &PackUnit{Base: Base{"pack"}, Sep: sep}
}

func (u *PackUnit) Process(c *chunk.Chunk) ([]*chunk.Chunk, error) {
	fields := strings.Fields(string(c.Payload))
	var out []byte
	for _, f := range fields {
		f = strings.TrimPrefix(strings.TrimPrefix(f, "0x"), "0X")
		b, err := hex.DecodeString(f)
		if err != nil {
			return nil, fmt.Errorf("pack: token %q: %w", f, err)
		}
		out = append(out, b...)
	}
	return one(c.Derive(out))
}

func (u *PackUnit) Reverse(c *chunk.Chunk) ([]*chunk.Chunk, error) {
	tokens := make([]string, len(c.Payload))
	for i, b := range c.Payload {
		tokens[i] = hex.EncodeToString([]byte{b})
	}
	return one(c.Derive([]byte(strings.Join(tokens, u.Sep))))
}
