package unit

import (
	"fmt"
	"strings"

	"github.com/binref/refinery-go/chunk"
)

// CfmtUnit is the `cfmt` unit: expands a template argument against the
// chunk's meta store, replacing each `{name}` placeholder with meta[name]
// rendered as bytes (spec.md §4.1 meta reads feeding a formatting unit;
// `{}` with no name substitutes the chunk's own payload, letting a format
// string quote the original data alongside its metadata).
type CfmtUnit struct {
	Base
	Template string
}

func NewCfmt(template string) *CfmtUnit { return &CfmtUnit{Base: Base{"cfmt"}, Template: template} }

func (u *CfmtUnit) Process(c *chunk.Chunk) ([]*chunk.Chunk, error) {
	template := u.Template
	var out strings.Builder
	i := 0
	for i < len(template) {
		if template[i] != '{' {
			out.WriteByte(template[i])
			i++
			continue
		}
		end := strings.IndexByte(template[i:], '}')
		if end < 0 {
			out.WriteString(template[i:])
			break
		}
		name := template[i+1 : i+end]
		if name == "" {
			out.Write(c.Payload)
		} else {
			v, ok := c.Get(name, c.ScopeDepth)
			if !ok {
				return nil, fmt.Errorf("cfmt: %q is not bound", name)
			}
			b, err := v.AsBytes()
			if err != nil {
				return nil, fmt.Errorf("cfmt: %q: %w", name, err)
			}
			out.Write(b)
		}
		i += end + 1
	}
	return one(c.Derive([]byte(out.String())))
}
