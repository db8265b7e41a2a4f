package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/binref/refinery-go/chunk"
	"github.com/binref/refinery-go/multibin"
)

func evalExpr(t *testing.T, expr string, c *chunk.Chunk) []byte {
	t.Helper()
	p, err := multibin.Compile(expr)
	require.NoError(t, err)
	ctx := multibin.NewContext(c, DefaultRegistry(), stubRunner{}, 16)
	out, err := p.Eval(ctx)
	require.NoError(t, err)
	return out
}

type stubRunner struct{}

func (stubRunner) RunBytes(spec string, input []byte, depth int) ([]byte, error) {
	return append([]byte(nil), input...), nil
}

func TestHexDecode(t *testing.T) {
	out := evalExpr(t, "hex:68656c6c6f", chunk.NewChunk(nil))
	assert.Equal(t, "hello", string(out))
}

func TestB64Decode(t *testing.T) {
	out := evalExpr(t, "b64:aGVsbG8=", chunk.NewChunk(nil))
	assert.Equal(t, "hello", string(out))
}

func TestB85RoundTrip(t *testing.T) {
	encoded := EncodeB85([]byte("hello world"))
	out := evalExpr(t, "b85:"+string(encoded), chunk.NewChunk(nil))
	assert.Equal(t, "hello world", string(out))
}

func TestURLDecode(t *testing.T) {
	out := evalExpr(t, "url:a%20b%2Bc", chunk.NewChunk(nil))
	assert.Equal(t, "a b+c", string(out))
}

func TestEscDecode(t *testing.T) {
	out := evalExpr(t, `esc:a\nb\x41`, chunk.NewChunk(nil))
	assert.Equal(t, "a\nbA", string(out))
}

func TestVarReadsChunkMeta(t *testing.T) {
	c := chunk.NewChunk([]byte("payload"))
	require.NoError(t, c.Meta().Set("key", chunk.StringValue("secret"), 0))
	out := evalExpr(t, "var:key", c)
	assert.Equal(t, "secret", string(out))
}

func TestVarMissingIsError(t *testing.T) {
	p, err := multibin.Compile("var:nope")
	require.NoError(t, err)
	ctx := multibin.NewContext(chunk.NewChunk(nil), DefaultRegistry(), stubRunner{}, 16)
	_, err = p.Eval(ctx)
	assert.Error(t, err)
}

func TestCopyExtractsWithoutMutating(t *testing.T) {
	c := chunk.NewChunk([]byte("0123456789"))
	out := evalExpr(t, "copy:2:5", c)
	assert.Equal(t, "234", string(out))
	assert.Equal(t, "0123456789", string(c.Payload))
}

func TestCutExtractsAndMutates(t *testing.T) {
	c := chunk.NewChunk([]byte("0123456789"))
	out := evalExpr(t, "cut:2:5", c)
	assert.Equal(t, "234", string(out))
	assert.Equal(t, "01" + "56789", string(c.Payload))
}

func TestCutNegativeIndices(t *testing.T) {
	c := chunk.NewChunk([]byte("0123456789"))
	out := evalExpr(t, "cut:-3:", c)
	assert.Equal(t, "789", string(out))
	assert.Equal(t, "0123456", string(c.Payload))
}

func TestCutWithVarField(t *testing.T) {
	c := chunk.NewChunk([]byte("0123456789"))
	require.NoError(t, c.Meta().Set("n", chunk.IntValue(4), 0))
	out := evalExpr(t, "cut:n:", c)
	assert.Equal(t, "456789", string(out))
}

func TestMD5Digest(t *testing.T) {
	out := evalExpr(t, "md5:hello", chunk.NewChunk(nil))
	assert.Len(t, out, 16)
}

func TestSHA256Digest(t *testing.T) {
	out := evalExpr(t, "sha256:hello", chunk.NewChunk(nil))
	assert.Len(t, out, 32)
}

func TestPBKDF2DerivesFromComposedInputAsPassword(t *testing.T) {
	// spec.md §8: `pbkdf2[32,s4lty]:swordfish` derives from password
	// "swordfish" (the literal to the right) salted with "s4lty" (the
	// second bracket argument) — not from the chunk's own payload.
	c := chunk.NewChunk([]byte("unrelated-payload"))

	out1 := evalExpr(t, "pbkdf2[16,s4lty]:swordfish", c)
	out2 := evalExpr(t, "pbkdf2[16,s4lty]:swordfish", c)
	assert.Equal(t, out1, out2)
	assert.Len(t, out1, 16)

	outOtherPassword := evalExpr(t, "pbkdf2[16,s4lty]:different", c)
	assert.NotEqual(t, out1, outOtherPassword)

	outOtherSalt := evalExpr(t, "pbkdf2[16,other]:swordfish", c)
	assert.NotEqual(t, out1, outOtherSalt)

	c2 := chunk.NewChunk([]byte("something-else-entirely"))
	outDifferentChunkPayload := evalExpr(t, "pbkdf2[16,s4lty]:swordfish", c2)
	assert.Equal(t, out1, outDifferentChunkPayload)
}

func TestRepRepeatsInput(t *testing.T) {
	out := evalExpr(t, "rep[3]:ab", chunk.NewChunk(nil))
	assert.Equal(t, "ababab", string(out))
}

func TestAccuIncrementsPerKey(t *testing.T) {
	p, err := multibin.Compile("accu[c]")
	require.NoError(t, err)
	ctx := multibin.NewContext(chunk.NewChunk(nil), DefaultRegistry(), stubRunner{}, 16)
	out1, err := p.Eval(ctx)
	require.NoError(t, err)
	out2, err := p.Eval(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0", string(out1))
	assert.Equal(t, "1", string(out2))
}

func TestEatRunsOverChunkPayload(t *testing.T) {
	c := chunk.NewChunk([]byte("hello"))
	out := evalExpr(t, "eat:noop", c)
	assert.Equal(t, "hello", string(out))
}

func TestQRequiresBracketSpec(t *testing.T) {
	p, err := multibin.Compile("q:abc")
	require.NoError(t, err)
	ctx := multibin.NewContext(chunk.NewChunk(nil), DefaultRegistry(), stubRunner{}, 16)
	_, err = p.Eval(ctx)
	assert.Error(t, err)
}

func TestFileRejectsPathTraversal(t *testing.T) {
	_, err := resolveSandboxed("../../etc/passwd")
	assert.Error(t, err)
}

func TestFileAllowsRelativePath(t *testing.T) {
	_, err := resolveSandboxed("handlers_test.go")
	assert.NoError(t, err)
}
