package multibin

// Eval runs p against ctx, walking Atoms right to left: the rightmost atom
// seeds the initial bytes (a literal, or a handler called with nil input),
// and each atom to its left is applied to the accumulator produced so far
// (spec.md §4.3 "right-to-left").
func (p *Program) Eval(ctx *Context) ([]byte, error) {
	var acc []byte
	for i := len(p.Atoms) - 1; i >= 0; i-- {
		a := p.Atoms[i]
		if a.HandlerName == "" {
			acc = append([]byte(nil), a.Literal...)
			continue
		}
		h, ok := ctx.Registry.Lookup(a.HandlerName)
		if !ok {
			return nil, errUnknownHandler(a.HandlerName)
		}
		out, err := h.Eval(ctx, a.Args, acc)
		if err != nil {
			return nil, err
		}
		acc = out
	}
	return acc, nil
}

// Disassemble renders p back into its expression-language surface form,
// handler by handler, for --help/debugging output (grounded on the
// assemble/disassemble symmetry pattern used across the pack's binary
// tooling). It is intentionally not guaranteed to byte-for-byte reproduce
// Program.Source; it reproduces an equivalent expression.
func Disassemble(p *Program) string {
	var out []byte
	for i, a := range p.Atoms {
		if i > 0 {
			out = append(out, ':')
		}
		if a.HandlerName == "" {
			out = append(out, a.Literal...)
			continue
		}
		out = append(out, a.HandlerName...)
		if a.IsSlicer {
			for _, arg := range a.Args {
				out = append(out, ':')
				out = append(out, arg...)
			}
			continue
		}
		if len(a.Args) > 0 {
			out = append(out, '[')
			for j, arg := range a.Args {
				if j > 0 {
					out = append(out, ',')
				}
				out = append(out, arg...)
			}
			out = append(out, ']')
		}
	}
	return string(out)
}
