package chunk

import (
	"fmt"
	"strings"
)

// Chunk is one in-flight (payload, meta) tuple carried through the pipeline
// (spec.md §3, GLOSSARY).
type Chunk struct {
	Payload []byte
	Visible bool
	// Path is a non-empty, ordered sequence of non-negative integers giving
	// this chunk's position within nested frames; len(Path) == depth+1.
	Path []int
	// ScopeDepth is the frame depth at which this chunk was produced.
	ScopeDepth int
	// index is this chunk's ordinal within its current frame, used to answer
	// the reserved "index" meta read (spec.md §4.1).
	index int

	meta *Meta
}

// NewChunk creates a root chunk at frame depth 0, index 0.
func NewChunk(payload []byte) *Chunk {
	return &Chunk{
		Payload:    payload,
		Visible:    true,
		Path:       []int{0},
		ScopeDepth: 0,
		meta:       New(),
	}
}

// Meta returns this chunk's meta store.
func (c *Chunk) Meta() *Meta { return c.meta }

// SetMeta replaces this chunk's meta store wholesale (used by units that
// compute an entirely new scope, e.g. entering a bracket group).
func (c *Chunk) SetMeta(m *Meta) { c.meta = m }

// Index returns this chunk's ordinal within the current frame.
func (c *Chunk) Index() int { return c.index }

// SetIndex is called by the driver as it assigns ordinals to emitted chunks
// within a frame (spec.md §3 "path monotonic within a frame level").
func (c *Chunk) SetIndex(i int) { c.index = i }

// Derive creates a child chunk carrying new payload but sharing this
// chunk's meta snapshot (copy-on-write) until the child itself writes to
// it. The child inherits Visible and ScopeDepth; callers must set Path
// themselves once the child's ordinal within the frame is known (spec.md
// §4.1 "derive a child chunk (shares meta snapshot, new payload)").
func (c *Chunk) Derive(payload []byte) *Chunk {
	return &Chunk{
		Payload:    payload,
		Visible:    c.Visible,
		Path:       append([]int(nil), c.Path...),
		ScopeDepth: c.ScopeDepth,
		meta:       c.meta.Snapshot(),
	}
}

// MergeMetaFrom overlays parent's meta on top of this chunk's own, with this
// chunk's bindings winning on conflict (spec.md §4.1 "merge meta from a
// parent (child wins on conflict)").
func (c *Chunk) MergeMetaFrom(parent *Chunk) {
	c.meta = parent.meta.Snapshot().Merge(c.meta)
}

// PathString renders Path the way the reserved "path" meta read does:
// dot-joined indices, e.g. "0.3.1".
func (c *Chunk) PathString() string {
	parts := make([]string, len(c.Path))
	for i, p := range c.Path {
		parts[i] = fmt.Sprintf("%d", p)
	}
	return strings.Join(parts, ".")
}

// Get resolves a meta read, handling the four reserved computed names
// (index, path, size, magic) before falling back to the stored meta map
// (spec.md §4.1). readDepth is the frame depth the read occurs at, used to
// enforce scoping (spec.md §8 invariant 4); pass c.ScopeDepth for an
// ordinary same-chunk read.
func (c *Chunk) Get(name string, readDepth int) (Value, bool) {
	switch name {
	case "index":
		return IntValue(int64(c.index)), true
	case "path":
		return StringValue(c.PathString()), true
	case "size":
		return IntValue(int64(len(c.Payload))), true
	case "magic":
		return StringValue(GuessMagic(c.Payload)), true
	}
	if !c.meta.VisibleAtDepth(name, readDepth) {
		return Value{}, false
	}
	return c.meta.Get(name)
}

// magicSignature is one entry in the best-effort file-type sniff table.
// The table is intentionally tiny: spec.md §1 places real format carving
// ("PE parsers, office parsers, etc.") out of scope as pluggable units; this
// only answers the reserved "magic" meta read with a short label, the way a
// `file`-lite one-liner would, grounded on the magic bytes visible in the
// pack's own format parsers (saferwall-pe's "MZ" DOS header, go-macho's
// Mach-O magic family) without importing either full parser.
type magicSignature struct {
	prefix []byte
	label  string
}

var magicTable = []magicSignature{
	{[]byte("MZ"), "pe"},
	{[]byte{0x7f, 'E', 'L', 'F'}, "elf"},
	{[]byte{0xFE, 0xED, 0xFA, 0xCE}, "macho-32"},
	{[]byte{0xFE, 0xED, 0xFA, 0xCF}, "macho-64"},
	{[]byte{0xCE, 0xFA, 0xED, 0xFE}, "macho-32-swap"},
	{[]byte{0xCF, 0xFA, 0xED, 0xFE}, "macho-64-swap"},
	{[]byte{0xCA, 0xFE, 0xBA, 0xBE}, "macho-fat"},
	{[]byte{0x1F, 0x8B}, "gzip"},
	{[]byte{0x78, 0x9C}, "zlib"},
	{[]byte{0x50, 0x4B, 0x03, 0x04}, "zip"},
	{[]byte("%PDF"), "pdf"},
	{[]byte{0x89, 'P', 'N', 'G'}, "png"},
}

// GuessMagic returns a short best-effort type label for payload, or "" if
// nothing in the table matches (spec.md §4.1: "magic (best-effort file-type
// guess)").
func GuessMagic(payload []byte) string {
	for _, sig := range magicTable {
		if len(payload) >= len(sig.prefix) && string(payload[:len(sig.prefix)]) == string(sig.prefix) {
			return sig.label
		}
	}
	return ""
}
