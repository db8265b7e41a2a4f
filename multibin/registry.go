package multibin

import "fmt"

// Handler implements one named multibin atom. Eval receives the bytes
// produced by the atom to its right (or nil for the rightmost atom) plus
// the atom's bracket arguments, and returns the bytes to pass leftward.
//
// Slicer handlers (cut/copy) are evaluated through the same interface but
// receive their Args from the slice-spec grammar (see Atom.IsSlicer) rather
// than the ordinary comma-split bracket grammar.
type Handler interface {
	Name() string
	Eval(ctx *Context, args []string, input []byte) ([]byte, error)
}

// Registry looks up Handlers by name. The zero value is empty and ready to
// use.
type Registry struct {
	handlers map[string]Handler
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register installs h under h.Name(), overwriting any previous handler with
// the same name.
func (r *Registry) Register(h Handler) {
	if r.handlers == nil {
		r.handlers = make(map[string]Handler)
	}
	r.handlers[h.Name()] = h
}

// Lookup returns the handler registered under name, if any.
func (r *Registry) Lookup(name string) (Handler, bool) {
	h, ok := r.handlers[name]
	return h, ok
}

// HandlerFunc adapts a plain function to the Handler interface for
// handlers with no state of their own, mirroring the common
// single-method-interface-as-func pattern.
type HandlerFunc struct {
	NameStr string
	Fn      func(ctx *Context, args []string, input []byte) ([]byte, error)
}

func (f HandlerFunc) Name() string { return f.NameStr }

func (f HandlerFunc) Eval(ctx *Context, args []string, input []byte) ([]byte, error) {
	return f.Fn(ctx, args, input)
}

// errUnknownHandler formats the standard "no such handler" error returned by
// Eval.
func errUnknownHandler(name string) error {
	return fmt.Errorf("multibin: unknown handler %q", name)
}
