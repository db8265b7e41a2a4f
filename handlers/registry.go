package handlers

import "github.com/binref/refinery-go/multibin"

// DefaultRegistry returns a Registry with every built-in handler installed,
// the set any unit's multibin.Compile/Eval is expected to run against
// (spec.md §4.3 "the registry is open; these MUST be provided").
func DefaultRegistry() *multibin.Registry {
	reg := multibin.NewRegistry()
	for _, h := range []multibin.Handler{
		Hex(), B64(), B85(), URL(), Esc(),
		Var(),
		Cut(), Copy(),
		PBKDF2(), MD5(), SHA1(), SHA256(),
		Eat(), Q(),
		Rep(), Accu(),
		File(), Range(),
	} {
		reg.Register(h)
	}
	return reg
}
