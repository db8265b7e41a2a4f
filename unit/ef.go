package unit

import (
	"fmt"
	"os"

	"github.com/binref/refinery-go/chunk"
)

// EfUnit is the `ef` ("emit file") source unit: the toolkit's one explicit,
// unsandboxed file-reading entry point (spec.md §4.4 "reading external
// files is allowed only through the file handler or explicit source units
// (emit, ef)"). Unlike the file/range multibin handlers, ef is meant to be
// invoked directly by the operator on a path they name on argv, so it does
// not apply the handlers package's cwd sandbox.
type EfUnit struct {
	Base
	Paths []string
}

func NewEf(paths ...string) *EfUnit {
	return &EfUnit{Base: Base{"ef"}, Paths: paths}
}

func (u *EfUnit) Process(c *chunk.Chunk) ([]*chunk.Chunk, error) {
	out := make([]*chunk.Chunk, 0, len(u.Paths))
	for _, p := range u.Paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("ef: %w", err)
		}
		out = append(out, c.Derive(data))
	}
	return out, nil
}
