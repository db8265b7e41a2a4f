package multibin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/binref/refinery-go/chunk"
)

func upperHandler() Handler {
	return HandlerFunc{NameStr: "upper", Fn: func(ctx *Context, args []string, input []byte) ([]byte, error) {
		out := make([]byte, len(input))
		for i, b := range input {
			if b >= 'a' && b <= 'z' {
				b -= 'a' - 'A'
			}
			out[i] = b
		}
		return out, nil
	}}
}

func repeatHandler() Handler {
	return HandlerFunc{NameStr: "rep", Fn: func(ctx *Context, args []string, input []byte) ([]byte, error) {
		n := 1
		if len(args) > 0 {
			n = 0
			for _, c := range args[0] {
				n = n*10 + int(c-'0')
			}
		}
		var out []byte
		for i := 0; i < n; i++ {
			out = append(out, input...)
		}
		return out, nil
	}}
}

func newTestRegistry() *Registry {
	reg := NewRegistry()
	reg.Register(upperHandler())
	reg.Register(repeatHandler())
	return reg
}

func TestCompileLiteralOnly(t *testing.T) {
	p, err := Compile("hello")
	require.NoError(t, err)
	require.Len(t, p.Atoms, 1)
	assert.Equal(t, []byte("hello"), p.Atoms[0].Literal)
}

func TestEvalSingleHandlerOverLiteral(t *testing.T) {
	p, err := Compile("upper:hello")
	require.NoError(t, err)

	ctx := NewContext(chunk.NewChunk(nil), newTestRegistry(), nil, 16)
	out, err := p.Eval(ctx)
	require.NoError(t, err)
	assert.Equal(t, "HELLO", string(out))
}

func TestEvalChainedHandlersRightToLeft(t *testing.T) {
	p, err := Compile("upper:rep[3]:ab")
	require.NoError(t, err)

	ctx := NewContext(chunk.NewChunk(nil), newTestRegistry(), nil, 16)
	out, err := p.Eval(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ABABAB", string(out))
}

func TestEvalUnknownHandlerErrors(t *testing.T) {
	p, err := Compile("nosuchhandler:x")
	require.NoError(t, err)

	ctx := NewContext(chunk.NewChunk(nil), newTestRegistry(), nil, 16)
	_, err = p.Eval(ctx)
	assert.Error(t, err)
}

func TestCompileSlicerConsumesRemainder(t *testing.T) {
	p, err := Compile("cut:3:10")
	require.NoError(t, err)
	require.Len(t, p.Atoms, 1)
	a := p.Atoms[0]
	assert.True(t, a.IsSlicer)
	assert.Equal(t, []string{"3", "10"}, a.Args)
}

func TestCompileSlicerWithEmptyFields(t *testing.T) {
	p, err := Compile("cut::10")
	require.NoError(t, err)
	require.Len(t, p.Atoms, 1)
	assert.Equal(t, []string{"", "10"}, p.Atoms[0].Args)
}

func TestCompileHandlerWithArgs(t *testing.T) {
	p, err := Compile("rep[5]:x")
	require.NoError(t, err)
	require.Len(t, p.Atoms, 2)
	assert.Equal(t, "rep", p.Atoms[0].HandlerName)
	assert.Equal(t, []string{"5"}, p.Atoms[0].Args)
	assert.Equal(t, []byte("x"), p.Atoms[1].Literal)
}

func TestCompileEmptyExpressionErrors(t *testing.T) {
	_, err := Compile("")
	assert.Error(t, err)
}

func TestDisassembleRoundTripsShape(t *testing.T) {
	p, err := Compile("rep[3]:ab")
	require.NoError(t, err)
	s := Disassemble(p)
	assert.Equal(t, "rep[3]:ab", s)
}

func TestDisassembleSlicerForm(t *testing.T) {
	p, err := Compile("cut:3:10")
	require.NoError(t, err)
	s := Disassemble(p)
	assert.Equal(t, "cut:3:10", s)
}

func TestNextAccuIsMonotonicPerKey(t *testing.T) {
	ctx := NewContext(chunk.NewChunk(nil), newTestRegistry(), nil, 16)
	assert.Equal(t, int64(0), ctx.NextAccu("a"))
	assert.Equal(t, int64(1), ctx.NextAccu("a"))
	assert.Equal(t, int64(0), ctx.NextAccu("b"))
	assert.Equal(t, int64(2), ctx.NextAccu("a"))
}
