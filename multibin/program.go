// Package multibin implements the small expression language evaluated at
// argument-parse time that composes handlers into a byte value (spec.md
// §4.3, GLOSSARY "Multibin").
//
// Grammar (spec.md §4.3):
//
//	expr    := atom (':' atom)*
//	atom    := handler ('[' args ']')? payload?
//	payload := ':' rest_of_token
//	args    := arg (',' arg)*
//
// Evaluation is right-to-left: the rightmost atom is a literal (or a
// handler that synthesizes bytes on its own, e.g. accu[5]); each handler to
// its left receives the bytes produced so far as its input.
//
// Following the design note in spec.md §9 ("compile multibin expressions
// once into a small IR ... execute the IR per chunk"), Compile parses an
// expression exactly once into a Program; Eval then runs that Program
// against a fresh Context (carrying the current chunk and meta store) for
// every chunk a unit processes, so `var:NAME`-style handlers are
// transparently re-evaluated per chunk without re-parsing the expression
// (spec.md §4.4).
package multibin

import (
	"fmt"
	"strings"
)

// Atom is one compiled step of a Program. A literal atom (HandlerName =="")
// supplies raw bytes directly; a handler atom names a registry entry plus
// its arguments.
type Atom struct {
	HandlerName string
	Args        []string
	Literal     []byte
	// IsSlicer marks cut/copy atoms, whose Args were captured via the
	// slice-spec grammar (colon-delimited, possibly-empty fields) rather
	// than the ordinary bracket/comma grammar (spec.md §9 Open Question 2,
	// resolved in SPEC_FULL.md §D.2).
	IsSlicer bool
}

// Program is a compiled multibin expression: a left-to-right sequence of
// Atoms, evaluated right-to-left by Eval.
type Program struct {
	Source string
	Atoms  []Atom
}

// slicerNames is the fixed set of handlers that consume the remainder of an
// expression as their own mini slice-spec grammar instead of participating
// in ordinary ':'-delimited atom splitting (spec.md §4.3 slicer row).
var slicerNames = map[string]bool{"cut": true, "copy": true}

// Compile parses expr into a Program. It does not resolve handler names
// against a registry — that happens at Eval time, so the same Program can
// be evaluated against registries that differ in which optional handlers
// are installed.
func Compile(expr string) (*Program, error) {
	p := &Program{Source: expr}

	tokens := strings.Split(expr, ":")
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		name, bracket, hasBracket := splitHandlerToken(tok)

		if slicerNames[name] {
			// Greedily consume the rest of the expression as this slicer's
			// own colon-delimited spec (spec.md §9 Open Question 2).
			rest := strings.Join(tokens[i+1:], ":")
			p.Atoms = append(p.Atoms, Atom{
				HandlerName: name,
				Args:        splitSliceSpec(rest),
				IsSlicer:    true,
			})
			break
		}

		if looksLikeHandlerName(name) && (hasBracket || i < len(tokens)-1) {
			var args []string
			if hasBracket {
				args = splitArgs(bracket)
			}
			p.Atoms = append(p.Atoms, Atom{HandlerName: name, Args: args})
			continue
		}

		// Terminal literal: the raw token text, verbatim, is the payload
		// (spec.md §4.3: "the rightmost atom must terminate in a literal
		// payload").
		p.Atoms = append(p.Atoms, Atom{Literal: []byte(tok)})
	}

	if len(p.Atoms) == 0 {
		return nil, fmt.Errorf("multibin: empty expression")
	}
	return p, nil
}

// splitHandlerToken splits "name[args]" into name, args (without brackets),
// and whether brackets were present. A token with no '[' is returned as
// (token, "", false).
func splitHandlerToken(tok string) (name string, bracketBody string, hasBracket bool) {
	open := strings.IndexByte(tok, '[')
	if open < 0 {
		return tok, "", false
	}
	if !strings.HasSuffix(tok, "]") {
		return tok, "", false
	}
	return tok[:open], tok[open+1 : len(tok)-1], true
}

// splitArgs splits a bracket argument body on top-level commas.
func splitArgs(body string) []string {
	if body == "" {
		return nil
	}
	return strings.Split(body, ",")
}

// splitSliceSpec splits a cut/copy remainder on every colon, keeping empty
// fields as "" so the handler can tell "omitted" from "zero" (spec.md §9
// Open Question 2): "S:E" -> [S,E], ":E" (from `cut::E`) -> ["", E], "S"
// alone -> [S]. Missing fields are not padded, and a third or later field
// is kept but ignored by the slicers, which read only start and end.
func splitSliceSpec(rest string) []string {
	if rest == "" {
		return nil
	}
	return strings.Split(rest, ":")
}

// looksLikeHandlerName is a conservative syntactic check used to decide
// whether a colon-separated token is meant as a handler name (and thus
// consumes what follows) or is itself the terminal literal. Handler names
// are identifier-shaped; this mirrors the identifier rule used for meta
// variable names (chunk.isIdentifier) since both name-spaces are drawn from
// the same ASCII identifier convention in the examples throughout spec.md.
func looksLikeHandlerName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
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
