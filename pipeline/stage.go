package pipeline

import (
	"errors"

	"github.com/binref/refinery-go/unit"
)

// errUnmatchedOpen is returned when a bracket group is opened but never
// closed, or a close token appears without a matching open (spec.md §6:
// malformed bracket nesting is an ArgumentError).
var errUnmatchedOpen = errors.New("pipeline: unmatched bracket")

// Stage is one node of the compiled pipeline tree: either a single unit
// invocation or a bracketed sub-pipeline group (spec.md §4.5).
type Stage struct {
	// Unit stages:
	Unit    unit.Unit
	Reverse bool // -R was given for this unit

	// Group stages (Unit == nil):
	Scoped bool // true for [| ... |]: chunks invisible to the outer pipe
	Inner  []Stage
}

func (s Stage) IsGroup() bool { return s.Unit == nil }

// BuildTree turns a flat Segment sequence (as produced by Parse) into a
// Stage tree, matching bracket pairs to arbitrary depth (spec.md §6
// "Nested brackets are allowed to arbitrary depth").
func BuildTree(segments []Segment, build func(Segment) (unit.Unit, bool, error)) ([]Stage, error) {
	stages, rest, err := buildTree(segments, build)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, errUnmatchedOpen
	}
	return stages, nil
}

func buildTree(segments []Segment, build func(Segment) (unit.Unit, bool, error)) ([]Stage, []Segment, error) {
	var stages []Stage
	for len(segments) > 0 {
		seg := segments[0]
		segments = segments[1:]

		switch seg.Bracket {
		case "":
			u, rev, err := build(seg)
			if err != nil {
				return nil, nil, err
			}
			stages = append(stages, Stage{Unit: u, Reverse: rev})
		case "[", "[|":
			inner, rest, err := buildTree(segments, build)
			if err != nil {
				return nil, nil, err
			}
			if len(rest) == 0 {
				return nil, nil, errUnmatchedOpen
			}
			closeTok := rest[0]
			wantClose := "]"
			if seg.Bracket == "[|" {
				wantClose = "|]"
			}
			if closeTok.Bracket != wantClose && closeTok.Bracket != "]" {
				return nil, nil, errUnmatchedOpen
			}
			stages = append(stages, Stage{Scoped: seg.Bracket == "[|", Inner: inner})
			segments = rest[1:]
		case "]", "|]":
			return stages, append([]Segment{seg}, segments...), nil
		}
	}
	return stages, nil, nil
}
