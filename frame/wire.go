// Package frame implements the Binary Refinery frame protocol: a
// self-describing wire format inserted between units so a chunked or
// grouped stream of chunk.Chunk values survives an OS pipe between two
// cooperating processes (spec.md §4.2, §6).
//
// Wire layout, bit-exact:
//
//	[magic 0x91 0xD1 0xF2][version 0x01]{record}*
//	record := CHUNK | OPEN | CLOSE
//	CHUNK  := tag(0x40|vis) uvarint(len(payload)) payload uvarint(nMeta) {metaEntry}*
//	metaEntry := uvarint(len(name)) name kind(1B) varint(scope) value
//	OPEN   := tag(0x20)
//	CLOSE  := tag(0x30)
//
// Varints are encoding/binary's LEB128-style uvarint (unsigned lengths and
// counts) and zigzag varint (signed integer values), the same scheme spec.md
// §6 names ("little-endian base-128 with continuation bit"); encoding/binary
// already implements exactly this, so the codec below reaches for it
// directly rather than hand-rolling a duplicate.
//
// Absence of the magic marker at the start of a stream means the stream is
// raw, unframed bytes: a single chunk at depth 0 with no meta (spec.md
// §4.2 "Rationale").
package frame

import "github.com/binref/refinery-go/chunk"

// Magic is the three-byte marker that opens a framed stream.
var Magic = [3]byte{0x91, 0xD1, 0xF2}

// Version is the only wire version this package speaks.
const Version byte = 0x01

// Tag byte values. CHUNK's low bit carries the chunk's visibility flag
// (spec.md §4.2 "A visibility flag is encoded in the CHUNK tag's low bit").
const (
	tagChunk byte = 0x40
	tagOpen  byte = 0x20
	tagClose byte = 0x30

	tagKindMask = 0xF0
	visBit      = 0x01
)

// kind tags for meta values (spec.md §6).
const (
	kindBytes  byte = 0x01
	kindInt    byte = 0x02
	kindStr    byte = 0x03
	kindList   byte = 0x04
)

func kindToTag(k chunk.Kind) (byte, bool) {
	switch k {
	case chunk.KindBytes:
		return kindBytes, true
	case chunk.KindInt:
		return kindInt, true
	case chunk.KindString:
		return kindStr, true
	case chunk.KindList:
		return kindList, true
	default:
		return 0, false
	}
}

func tagToKind(t byte) (chunk.Kind, bool) {
	switch t {
	case kindBytes:
		return chunk.KindBytes, true
	case kindInt:
		return chunk.KindInt, true
	case kindStr:
		return chunk.KindString, true
	case kindList:
		return chunk.KindList, true
	default:
		return 0, false
	}
}
