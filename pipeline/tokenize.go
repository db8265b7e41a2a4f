// Package pipeline implements the CLI pipeline driver: parsing a whole
// pipeline string (the `refinery run "..."` form) into unit invocations and
// bracket tokens, and running them as an in-process streaming graph with
// frame depth tracking (spec.md §4.5, §6).
package pipeline

import (
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// bracketTokens is the fixed set of standalone tokens recognized as
// pipeline control tokens rather than unit names (spec.md §6 "Bracket
// sublanguage").
var bracketTokens = map[string]bool{
	"[": true, "]": true, "[|": true, "|]": true,
}

// Segment is one stage of a parsed pipeline: either a bracket control token
// or a unit invocation with its argv.
type Segment struct {
	Bracket string   // one of "[", "]", "[|", "|]"; empty for a unit invocation
	Unit    string    // unit name, empty for a bracket token
	Args    []string  // argv following the unit name
}

// IsBracket reports whether this segment is a control token rather than a
// unit invocation.
func (s Segment) IsBracket() bool { return s.Bracket != "" }

// Parse tokenizes a whole pipeline string into a flat, left-to-right
// sequence of Segments. It uses mvdan.cc/sh/v3's bash parser for
// shell-accurate word splitting and quote handling within each pipe stage
// (grounded on the structural command parsing done in the pack's agent
// shell analyzer), then classifies each single-word stage against
// bracketTokens — `[`, `]`, `[|`, `|]` have no special meaning to the
// shell grammar itself, so they parse as ordinary command words and this
// layer is solely responsible for recognizing them (spec.md §6).
func Parse(spec string) ([]Segment, error) {
	parser := syntax.NewParser(syntax.Variant(syntax.LangBash))
	file, err := parser.Parse(strings.NewReader(spec), "")
	if err != nil {
		return nil, fmt.Errorf("pipeline: parse error: %w", err)
	}
	if len(file.Stmts) == 0 {
		return nil, fmt.Errorf("pipeline: empty pipeline")
	}
	if len(file.Stmts) > 1 {
		return nil, fmt.Errorf("pipeline: unexpected multiple statements (did you mean '|'?)")
	}

	var out []Segment
	if err := walk(file.Stmts[0].Cmd, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func walk(cmd syntax.Command, out *[]Segment) error {
	switch c := cmd.(type) {
	case *syntax.BinaryCmd:
		if c.Op != syntax.Pipe {
			return fmt.Errorf("pipeline: unsupported operator %q; only '|' pipelines are accepted", c.Op)
		}
		if err := walk(c.X.Cmd, out); err != nil {
			return err
		}
		// `[|` and `|]` contain the pipe operator, so the shell grammar
		// splits them into a bracket word and a pipe. A `[` written flush
		// against the following pipe, or a `]` flush against the preceding
		// one, is rejoined into the scoped bracket token.
		if n := len(*out); n > 0 && (*out)[n-1].Bracket == "[" && c.X.Cmd.End().Offset() == c.OpPos.Offset() {
			(*out)[n-1].Bracket = "[|"
		}
		start := len(*out)
		if err := walk(c.Y.Cmd, out); err != nil {
			return err
		}
		if start < len(*out) && (*out)[start].Bracket == "]" && c.Y.Cmd.Pos().Offset() == c.OpPos.Offset()+1 {
			(*out)[start].Bracket = "|]"
		}
		return nil
	case *syntax.CallExpr:
		words := make([]string, len(c.Args))
		for i, w := range c.Args {
			words[i] = wordLiteral(w)
		}
		if len(words) == 0 {
			return fmt.Errorf("pipeline: empty pipe stage")
		}
		if len(words) == 1 && bracketTokens[words[0]] {
			*out = append(*out, Segment{Bracket: words[0]})
			return nil
		}
		*out = append(*out, Segment{Unit: words[0], Args: words[1:]})
		return nil
	default:
		return fmt.Errorf("pipeline: unsupported shell construct %T", cmd)
	}
}

// wordLiteral renders a syntax.Word to its dequoted literal text: single
// and double-quoted parts contribute their raw text verbatim, since this
// DSL has no parameter or command substitution of its own — substitution
// into a unit's bytes is the job of the multibin expression language, not
// the argv tokenizer.
func wordLiteral(w *syntax.Word) string {
	var sb strings.Builder
	for _, part := range w.Parts {
		switch p := part.(type) {
		case *syntax.Lit:
			sb.WriteString(p.Value)
		case *syntax.SglQuoted:
			sb.WriteString(p.Value)
		case *syntax.DblQuoted:
			for _, inner := range p.Parts {
				if lit, ok := inner.(*syntax.Lit); ok {
					sb.WriteString(lit.Value)
				}
			}
		}
	}
	return sb.String()
}
