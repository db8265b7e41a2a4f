// Package handlers implements the concrete multibin.Handler set (spec.md
// §4.3 handler table): decoders, a meta reader, slicers, key-derivation
// shortcuts, repeaters, sub-pipeline recursion, and bounded file access.
package handlers

import (
	"encoding/ascii85"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"

	"github.com/binref/refinery-go/multibin"
)

// hexHandler implements the hex decoder. Binary Refinery units invoke
// handlers in the direction implied by -R on the owning unit, not by a
// handler-local flag, so Eval ignores its bracket arguments and always
// decodes hex text to bytes: the encode direction is exposed as the `hex`
// unit's reverse mode, through EncodeHex (spec.md §4.3 "hex: hex <-> bytes").
type hexHandler struct{}

func Hex() multibin.Handler { return hexHandler{} }

func (hexHandler) Name() string { return "hex" }

func (hexHandler) Eval(ctx *multibin.Context, args []string, input []byte) ([]byte, error) {
	out := make([]byte, hex.DecodedLen(len(input)))
	n, err := hex.Decode(out, input)
	if err != nil {
		return nil, fmt.Errorf("hex: %w", err)
	}
	return out[:n], nil
}

// EncodeHex is the inverse transform, used directly by the hex unit's
// reverse mode rather than through the handler registry (handlers compose
// left of a literal; units need both directions as first-class calls).
func EncodeHex(b []byte) []byte {
	return []byte(hex.EncodeToString(b))
}

type b64Handler struct{}

func B64() multibin.Handler { return b64Handler{} }

func (b64Handler) Name() string { return "b64" }

func (b64Handler) Eval(ctx *multibin.Context, args []string, input []byte) ([]byte, error) {
	enc := base64.StdEncoding
	if len(args) > 0 && args[0] == "url" {
		enc = base64.URLEncoding
	}
	out, err := enc.DecodeString(strings.TrimRight(string(input), "\r\n"))
	if err != nil {
		// Binary Refinery's own b64 tolerates missing padding; retry with
		// the raw (unpadded) variant before giving up.
		out, err = enc.WithPadding(base64.NoPadding).DecodeString(string(input))
		if err != nil {
			return nil, fmt.Errorf("b64: %w", err)
		}
	}
	return out, nil
}

func EncodeB64(b []byte, urlSafe bool) []byte {
	enc := base64.StdEncoding
	if urlSafe {
		enc = base64.URLEncoding
	}
	return []byte(enc.EncodeToString(b))
}

type b85Handler struct{}

func B85() multibin.Handler { return b85Handler{} }

func (b85Handler) Name() string { return "b85" }

func (b85Handler) Eval(ctx *multibin.Context, args []string, input []byte) ([]byte, error) {
	out := make([]byte, len(input))
	n, _, err := ascii85.Decode(out, input, true)
	if err != nil {
		return nil, fmt.Errorf("b85: %w", err)
	}
	return out[:n], nil
}

func EncodeB85(b []byte) []byte {
	out := make([]byte, ascii85.MaxEncodedLen(len(b)))
	n := ascii85.Encode(out, b)
	return out[:n]
}

type urlHandler struct{}

func URL() multibin.Handler { return urlHandler{} }

func (urlHandler) Name() string { return "url" }

func (urlHandler) Eval(ctx *multibin.Context, args []string, input []byte) ([]byte, error) {
	out, err := url.QueryUnescape(string(input))
	if err != nil {
		return nil, fmt.Errorf("url: %w", err)
	}
	return []byte(out), nil
}

func EncodeURL(b []byte) []byte {
	return []byte(url.QueryEscape(string(b)))
}

type escHandler struct{}

func Esc() multibin.Handler { return escHandler{} }

func (escHandler) Name() string { return "esc" }

// esc implements C-style backslash escapes (spec.md §4.3 "esc: C escape
// sequences"), a small table-driven transform kept on the standard library:
// no example repo in the pack ships a general unescape utility, and
// strconv.Unquote requires surrounding quotes and rejects bytes the way
// C-escaped binary blobs legitimately contain.
func (escHandler) Eval(ctx *multibin.Context, args []string, input []byte) ([]byte, error) {
	var out []byte
	for i := 0; i < len(input); i++ {
		if input[i] != '\\' || i == len(input)-1 {
			out = append(out, input[i])
			continue
		}
		i++
		switch input[i] {
		case 'n':
			out = append(out, '\n')
		case 'r':
			out = append(out, '\r')
		case 't':
			out = append(out, '\t')
		case 'b':
			out = append(out, '\b')
		case 'f':
			out = append(out, '\f')
		case 'v':
			out = append(out, '\v')
		case '0':
			out = append(out, 0)
		case '\\':
			out = append(out, '\\')
		case 'x':
			if i+2 < len(input) {
				b, err := hex.DecodeString(string(input[i+1 : i+3]))
				if err == nil && len(b) == 1 {
					out = append(out, b[0])
					i += 2
					continue
				}
			}
			out = append(out, 'x')
		default:
			out = append(out, '\\', input[i])
		}
	}
	return out, nil
}

func EncodeEsc(b []byte) []byte {
	var out []byte
	for _, c := range b {
		switch c {
		case '\n':
			out = append(out, '\\', 'n')
		case '\r':
			out = append(out, '\\', 'r')
		case '\t':
			out = append(out, '\\', 't')
		case '\\':
			out = append(out, '\\', '\\')
		default:
			if c < 0x20 || c >= 0x7f {
				out = append(out, []byte(fmt.Sprintf("\\x%02x", c))...)
			} else {
				out = append(out, c)
			}
		}
	}
	return out
}
