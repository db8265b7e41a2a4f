// Package chunk defines the unit of data in flight through a Binary Refinery
// pipeline: a byte payload plus its attached meta variables, visibility flag,
// and frame-path coordinates.
package chunk

import "fmt"

// Kind tags the four value shapes a meta variable can hold.
type Kind uint8

const (
	KindBytes Kind = iota + 1
	KindInt
	KindString
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindBytes:
		return "bytes"
	case KindInt:
		return "integer"
	case KindString:
		return "string"
	case KindList:
		return "list"
	default:
		return fmt.Sprintf("kind(%d)", k)
	}
}

// Value is a tagged meta-variable value. Only the field matching Kind is
// meaningful; the others are zero. Values are immutable once constructed.
type Value struct {
	Kind  Kind    `cbor:"k"`
	Bytes []byte  `cbor:"b,omitempty"`
	Int   int64   `cbor:"i,omitempty"`
	Str   string  `cbor:"s,omitempty"`
	List  []Value `cbor:"l,omitempty"`
}

// BytesValue wraps a byte slice as a Value. The slice is not copied; callers
// must not mutate it afterwards.
func BytesValue(b []byte) Value { return Value{Kind: KindBytes, Bytes: b} }

// IntValue wraps an integer as a Value.
func IntValue(i int64) Value { return Value{Kind: KindInt, Int: i} }

// StringValue wraps a UTF-8 string as a Value.
func StringValue(s string) Value { return Value{Kind: KindString, Str: s} }

// ListValue wraps a slice of Values as a Value.
func ListValue(vs []Value) Value { return Value{Kind: KindList, List: vs} }

// AsBytes coerces a Value to bytes the way multibin handlers expect: bytes
// values pass through, strings are their UTF-8 encoding, integers render as
// decimal ASCII, and lists are rejected (handlers operate on scalars).
func (v Value) AsBytes() ([]byte, error) {
	switch v.Kind {
	case KindBytes:
		return v.Bytes, nil
	case KindString:
		return []byte(v.Str), nil
	case KindInt:
		return []byte(fmt.Sprintf("%d", v.Int)), nil
	default:
		return nil, fmt.Errorf("chunk: cannot coerce %s value to bytes", v.Kind)
	}
}

// Equal reports whether two values are structurally identical. Used by tests
// and by the frame codec's round-trip property.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindBytes:
		return string(v.Bytes) == string(o.Bytes)
	case KindInt:
		return v.Int == o.Int
	case KindString:
		return v.Str == o.Str
	case KindList:
		if len(v.List) != len(o.List) {
			return false
		}
		for i := range v.List {
			if !v.List[i].Equal(o.List[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
