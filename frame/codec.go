package frame

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"sort"

	"github.com/binref/refinery-go/chunk"
)

// EncodeChunk appends the CHUNK wire record for c to buf and returns the
// extended slice. It does not write the stream header; callers use Encoder
// for that.
func EncodeChunk(buf []byte, c *chunk.Chunk) ([]byte, error) {
	tag := tagChunk
	if c.Visible {
		tag |= visBit
	}
	buf = append(buf, tag)
	buf = appendUvarint(buf, uint64(len(c.Payload)))
	buf = append(buf, c.Payload...)

	bindings := c.Meta().Bindings()
	sort.Slice(bindings, func(i, j int) bool { return bindings[i].Name < bindings[j].Name })

	buf = appendUvarint(buf, uint64(len(bindings)))
	for _, b := range bindings {
		var err error
		buf, err = encodeBinding(buf, b)
		if err != nil {
			return nil, err
		}
	}
	return buf, nil
}

func encodeBinding(buf []byte, b Binding) ([]byte, error) {
	buf = appendUvarint(buf, uint64(len(b.Name)))
	buf = append(buf, b.Name...)
	tag, ok := kindToTag(b.Value.Kind)
	if !ok {
		return nil, fmt.Errorf("frame: meta %q has unencodable kind %s", b.Name, b.Value.Kind)
	}
	buf = append(buf, tag)
	buf = appendVarint(buf, int64(b.Scope))
	return encodeValue(buf, b.Value)
}

// Binding is a local alias so codec.go reads naturally; it is the same
// shape as chunk.Meta's exported Binding.
type Binding = chunk.Binding

func encodeValue(buf []byte, v chunk.Value) ([]byte, error) {
	switch v.Kind {
	case chunk.KindBytes:
		buf = appendUvarint(buf, uint64(len(v.Bytes)))
		buf = append(buf, v.Bytes...)
		return buf, nil
	case chunk.KindInt:
		buf = appendVarint(buf, v.Int)
		return buf, nil
	case chunk.KindString:
		buf = appendUvarint(buf, uint64(len(v.Str)))
		buf = append(buf, v.Str...)
		return buf, nil
	case chunk.KindList:
		buf = appendUvarint(buf, uint64(len(v.List)))
		for _, el := range v.List {
			tag, ok := kindToTag(el.Kind)
			if !ok {
				return nil, fmt.Errorf("frame: list element has unencodable kind %s", el.Kind)
			}
			buf = append(buf, tag)
			var err error
			buf, err = encodeValue(buf, el)
			if err != nil {
				return nil, err
			}
		}
		return buf, nil
	default:
		return nil, fmt.Errorf("frame: unencodable value kind %s", v.Kind)
	}
}

// byteReader is the minimal surface decodeChunk needs; *bytes.Reader and the
// buffered reader used by Decoder both satisfy it.
type byteReader interface {
	io.Reader
	io.ByteReader
}

// DecodeChunk reads one CHUNK record's body (everything after the tag byte,
// which the caller has already consumed and passed as vis) from r.
func DecodeChunk(r byteReader, visible bool) (*chunk.Chunk, error) {
	length, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, fmt.Errorf("frame: read payload length: %w", err)
	}
	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("frame: read payload: %w", err)
	}

	c := chunk.NewChunk(payload)
	c.Visible = visible

	nMeta, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, fmt.Errorf("frame: read meta count: %w", err)
	}
	for i := uint64(0); i < nMeta; i++ {
		b, err := decodeBinding(r)
		if err != nil {
			return nil, err
		}
		c.Meta().SetBinding(b)
	}
	return c, nil
}

func decodeBinding(r byteReader) (Binding, error) {
	nameLen, err := binary.ReadUvarint(r)
	if err != nil {
		return Binding{}, fmt.Errorf("frame: read meta name length: %w", err)
	}
	name := make([]byte, nameLen)
	if _, err := io.ReadFull(r, name); err != nil {
		return Binding{}, fmt.Errorf("frame: read meta name: %w", err)
	}
	kindTag, err := r.ReadByte()
	if err != nil {
		return Binding{}, fmt.Errorf("frame: read meta kind: %w", err)
	}
	kind, ok := tagToKind(kindTag)
	if !ok {
		return Binding{}, fmt.Errorf("frame: unknown meta kind tag 0x%02x", kindTag)
	}
	scope, err := binary.ReadVarint(r)
	if err != nil {
		return Binding{}, fmt.Errorf("frame: read meta scope: %w", err)
	}
	val, err := decodeValue(r, kind)
	if err != nil {
		return Binding{}, err
	}
	return Binding{Name: string(name), Value: val, Scope: int(scope)}, nil
}

func decodeValue(r byteReader, kind chunk.Kind) (chunk.Value, error) {
	switch kind {
	case chunk.KindBytes:
		n, err := binary.ReadUvarint(r)
		if err != nil {
			return chunk.Value{}, fmt.Errorf("frame: read bytes length: %w", err)
		}
		b := make([]byte, n)
		if _, err := io.ReadFull(r, b); err != nil {
			return chunk.Value{}, fmt.Errorf("frame: read bytes value: %w", err)
		}
		return chunk.BytesValue(b), nil
	case chunk.KindInt:
		n, err := binary.ReadVarint(r)
		if err != nil {
			return chunk.Value{}, fmt.Errorf("frame: read int value: %w", err)
		}
		return chunk.IntValue(n), nil
	case chunk.KindString:
		n, err := binary.ReadUvarint(r)
		if err != nil {
			return chunk.Value{}, fmt.Errorf("frame: read string length: %w", err)
		}
		b := make([]byte, n)
		if _, err := io.ReadFull(r, b); err != nil {
			return chunk.Value{}, fmt.Errorf("frame: read string value: %w", err)
		}
		return chunk.StringValue(string(b)), nil
	case chunk.KindList:
		n, err := binary.ReadUvarint(r)
		if err != nil {
			return chunk.Value{}, fmt.Errorf("frame: read list length: %w", err)
		}
		list := make([]chunk.Value, n)
		for i := range list {
			elKindTag, err := r.ReadByte()
			if err != nil {
				return chunk.Value{}, fmt.Errorf("frame: read list element kind: %w", err)
			}
			elKind, ok := tagToKind(elKindTag)
			if !ok {
				return chunk.Value{}, fmt.Errorf("frame: unknown list element kind tag 0x%02x", elKindTag)
			}
			el, err := decodeValue(r, elKind)
			if err != nil {
				return chunk.Value{}, err
			}
			list[i] = el
		}
		return chunk.ListValue(list), nil
	default:
		return chunk.Value{}, fmt.Errorf("frame: unknown value kind %s", kind)
	}
}

func appendUvarint(buf []byte, x uint64) []byte {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], x)
	return append(buf, tmp[:n]...)
}

func appendVarint(buf []byte, x int64) []byte {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutVarint(tmp[:], x)
	return append(buf, tmp[:n]...)
}

// decodeChunkFromBytes decodes a whole CHUNK record held in memory, given
// its tag byte and, as a separate byte slice, the body that follows it.
func decodeChunkFromBytes(tag byte, body []byte) (*chunk.Chunk, error) {
	return DecodeChunk(bytes.NewReader(body), tag&visBit != 0)
}
