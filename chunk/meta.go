package chunk

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// ReservedNames are computed on read rather than stored; a unit that tries
// to Set one of these gets an error (spec.md §4.1).
var ReservedNames = map[string]bool{
	"index": true,
	"path":  true,
	"size":  true,
	"magic": true,
}

// entry pairs a stored value with the frame depth it was bound at. When the
// frame at that depth closes, CloseScope drops the entry (spec.md §3, §4.2).
type entry struct {
	Value Value `cbor:"v"`
	Scope int   `cbor:"d"`
}

// Meta is the per-chunk mapping of variable names to typed values. It is
// copy-on-write: Snapshot hands out a reference that shares the underlying
// map until the first write, at which point the spine (the map itself, not
// the values) is copied. This mirrors the teacher's EncodeCBOR/DecodeCBOR
// round-trip pattern (bifaci/io.go) for the one place a true independent
// copy is required: DeepCopy.
type Meta struct {
	entries map[string]entry
}

// New returns an empty meta store.
func New() *Meta {
	return &Meta{entries: make(map[string]entry)}
}

// Snapshot returns a Meta that shares this one's entries until either is
// written to. Used when splitting one input chunk into N output chunks
// (spec.md §4.1: "the meta store is copy-on-write").
func (m *Meta) Snapshot() *Meta {
	if m == nil {
		return New()
	}
	return &Meta{entries: m.entries}
}

// isIdentifier validates the identifier-class name rule from spec.md §3:
// letters, digits, underscore; must start with a letter or underscore.
func isIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
		isDigit := r >= '0' && r <= '9'
		if i == 0 && !isAlpha {
			return false
		}
		if !isAlpha && !isDigit {
			return false
		}
	}
	return true
}

// Set binds name to v at the given frame depth. Reserved names and malformed
// identifiers are rejected (spec.md §3, §4.1).
func (m *Meta) Set(name string, v Value, scopeDepth int) error {
	if !isIdentifier(name) {
		return fmt.Errorf("chunk: %q is not a valid meta variable name", name)
	}
	if ReservedNames[name] {
		return fmt.Errorf("chunk: %q is a reserved, read-only meta name", name)
	}
	m.own()
	m.entries[name] = entry{Value: v, Scope: scopeDepth}
	return nil
}

// Unset removes a binding, if present. A no-op for names that aren't bound.
func (m *Meta) Unset(name string) {
	if _, ok := m.entries[name]; !ok {
		return
	}
	m.own()
	delete(m.entries, name)
}

// Get looks up a stored (non-reserved) variable.
func (m *Meta) Get(name string) (Value, bool) {
	if m == nil {
		return Value{}, false
	}
	e, ok := m.entries[name]
	return e.Value, ok
}

// Names returns the set of currently-bound variable names, for diagnostics
// and for `cfmt`-style template expansion.
func (m *Meta) Names() []string {
	if m == nil {
		return nil
	}
	names := make([]string, 0, len(m.entries))
	for n := range m.entries {
		names = append(names, n)
	}
	return names
}

// own gives this Meta its own map if it is currently sharing one, copying
// only the spine (the map), never the Values themselves — the copy-on-write
// discipline spec.md §4.1 describes.
func (m *Meta) own() {
	cp := make(map[string]entry, len(m.entries))
	for k, v := range m.entries {
		cp[k] = v
	}
	m.entries = cp
}

// CloseScope drops every variable bound at frame depth >= depth, returning a
// new Meta reflecting the frame's exit (spec.md §3 "Lifecycles", §8
// invariant 4 "Frame scoping"). The receiver is left untouched.
func (m *Meta) CloseScope(depth int) *Meta {
	out := &Meta{entries: make(map[string]entry, len(m.entries))}
	for k, e := range m.entries {
		if e.Scope < depth {
			out.entries[k] = e
		}
	}
	return out
}

// VisibleAtDepth reports whether a variable bound at its own scope would be
// visible to a read performed at readDepth: bound variables are visible at
// their own depth and any deeper (same lineage), never at a shallower depth
// (spec.md §8 invariant 4).
func (m *Meta) VisibleAtDepth(name string, readDepth int) bool {
	e, ok := m.entries[name]
	if !ok {
		return false
	}
	return readDepth >= e.Scope
}

// Merge overlays other's bindings onto m, with other winning on conflict —
// "merge meta from a parent (child wins on conflict)" per spec.md §4.1 when
// called as child.Merge(parentSnapshot) is inverted by the caller; this
// method always means "apply other on top of m".
func (m *Meta) Merge(other *Meta) *Meta {
	out := &Meta{entries: make(map[string]entry, len(m.entries)+len(other.entries))}
	for k, v := range m.entries {
		out.entries[k] = v
	}
	for k, v := range other.entries {
		out.entries[k] = v
	}
	return out
}

// cborEnvelope is the wire shape used solely for DeepCopy's round trip.
type cborEnvelope struct {
	Entries map[string]entry `cbor:"e"`
}

// DeepCopy returns a Meta wholly independent of m, including its Values
// (useful when a nested eat/q sub-pipeline must not be able to mutate the
// outer chunk's meta through aliasing). Grounded on bifaci/io.go's
// EncodeCBOR/DecodeCBOR round trip of Limits: rather than hand-write a
// recursive copy for four value kinds, the store is marshaled through CBOR
// and unmarshaled back, which both deep-copies and validates structure in
// one step.
func (m *Meta) DeepCopy() (*Meta, error) {
	if m == nil {
		return New(), nil
	}
	buf, err := cbor.Marshal(cborEnvelope{Entries: m.entries})
	if err != nil {
		return nil, fmt.Errorf("chunk: meta deep copy encode: %w", err)
	}
	var env cborEnvelope
	if err := cbor.Unmarshal(buf, &env); err != nil {
		return nil, fmt.Errorf("chunk: meta deep copy decode: %w", err)
	}
	if env.Entries == nil {
		env.Entries = make(map[string]entry)
	}
	return &Meta{entries: env.Entries}, nil
}

// Binding is one (name, value, scope) triple, exported so other packages
// (notably frame, which serializes meta blocks onto the wire) can iterate a
// Meta store without reaching into its internals.
type Binding struct {
	Name  string
	Value Value
	Scope int
}

// Bindings returns every currently-bound variable as a Binding. Order is
// unspecified; callers that need determinism (e.g. the frame encoder, for
// reproducible fixtures) should sort by Name.
func (m *Meta) Bindings() []Binding {
	if m == nil {
		return nil
	}
	out := make([]Binding, 0, len(m.entries))
	for name, e := range m.entries {
		out = append(out, Binding{Name: name, Value: e.Value, Scope: e.Scope})
	}
	return out
}

// SetBinding restores a single Binding produced by Bindings, bypassing the
// reserved-name check — used by the frame decoder to reconstruct a Meta
// store from the wire, where the encoder already validated names on the
// writing side.
func (m *Meta) SetBinding(b Binding) {
	m.own()
	m.entries[b.Name] = entry{Value: b.Value, Scope: b.Scope}
}

// Len reports the number of bound (non-reserved) variables.
func (m *Meta) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}
