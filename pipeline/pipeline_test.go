package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/binref/refinery-go/chunk"
	"github.com/binref/refinery-go/unit"
)

func TestParseSimplePipeline(t *testing.T) {
	segs, err := Parse("hex | b64 -R")
	require.NoError(t, err)
	require.Len(t, segs, 2)
	assert.Equal(t, "hex", segs[0].Unit)
	assert.Equal(t, "b64", segs[1].Unit)
	assert.Equal(t, []string{"-R"}, segs[1].Args)
}

func TestParseBracketTokens(t *testing.T) {
	segs, err := Parse("emit hello | [ | hex | ] | b64")
	require.NoError(t, err)
	require.Len(t, segs, 5)
	assert.Equal(t, "[", segs[1].Bracket)
	assert.Equal(t, "hex", segs[2].Unit)
	assert.Equal(t, "]", segs[3].Bracket)
}

func TestParseScopedBracket(t *testing.T) {
	segs, err := Parse("emit hello | [| hex |] | b64")
	require.NoError(t, err)
	assert.Equal(t, "[|", segs[1].Bracket)
	assert.Equal(t, "|]", segs[3].Bracket)
}

func buildStages(t *testing.T, d *Driver, spec string) []Stage {
	t.Helper()
	segs, err := Parse(spec)
	require.NoError(t, err)
	stages, err := BuildTree(segs, func(seg Segment) (unit.Unit, bool, error) {
		return Build(d.evaluator(), seg)
	})
	require.NoError(t, err)
	return stages
}

func TestBuildTreeRejectsUnmatchedOpen(t *testing.T) {
	d := NewDriver()
	segs, err := Parse("emit a | [ | hex")
	require.NoError(t, err)
	_, err = BuildTree(segs, func(seg Segment) (unit.Unit, bool, error) {
		return Build(d.evaluator(), seg)
	})
	assert.Error(t, err)
}

func TestDriverRunHexUnit(t *testing.T) {
	d := NewDriver()
	stages := buildStages(t, d, "hex")

	out, err := d.Run(stages, []*chunk.Chunk{chunk.NewChunk([]byte("68656c6c6f"))}, 0)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "hello", string(out[0].Payload))
}

func TestDriverRunBracketGroup(t *testing.T) {
	d := NewDriver()
	stages := buildStages(t, d, "hex | [ | b64 -R | ]")

	out, err := d.Run(stages, []*chunk.Chunk{chunk.NewChunk([]byte("68656c6c6f"))}, 0)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "aGVsbG8=", string(out[0].Payload))
}

func TestDriverRunUnknownUnitErrors(t *testing.T) {
	d := NewDriver()
	segs, err := Parse("nosuchunit")
	require.NoError(t, err)
	_, err = BuildTree(segs, func(seg Segment) (unit.Unit, bool, error) {
		return Build(d.evaluator(), seg)
	})
	assert.Error(t, err)
}

func TestRunBytesServesSubPipeline(t *testing.T) {
	d := NewDriver()
	out, err := d.RunBytes("hex", []byte("68656c6c6f"), 1)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(out))
}

func TestRunBytesEnforcesRecursionCap(t *testing.T) {
	d := NewDriver()
	_, err := d.RunBytes("hex", []byte("68656c6c6f"), d.MaxDepth+1)
	assert.Error(t, err)
}

// TestScopedGroupOutputInvisibleToOuterPipe pins spec.md §4.5's scoped
// bracket semantics: "[| ... |] ... additionally makes the chunks invisible
// to the outer pipe". Without the visibility gate, url -R would see and
// re-encode the scoped group's base64 output, percent-escaping its trailing
// "=" into "%3D".
func TestScopedGroupOutputInvisibleToOuterPipe(t *testing.T) {
	d := NewDriver()
	stages := buildStages(t, d, "hex | [| b64 -R |] | url -R")

	out, err := d.Run(stages, []*chunk.Chunk{chunk.NewChunk([]byte("68656c6c6f"))}, 0)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "aGVsbG8=", string(out[0].Payload))
}

// TestDecodeChainRoundTrip exercises the zl/b64 decode chain from spec.md §8
// ("Decode chain") as a round trip rather than a hardcoded literal: Go's
// compress/zlib output isn't guaranteed byte-identical to another zlib
// implementation's, so only the semantics (decode undoes encode) are
// pinned.
func TestDecodeChainRoundTrip(t *testing.T) {
	d := NewDriver()

	encode := buildStages(t, d, `emit "Hello World" | zl -R | b64 -R`)
	encoded, err := d.Run(encode, []*chunk.Chunk{chunk.NewChunk(nil)}, 0)
	require.NoError(t, err)
	require.Len(t, encoded, 1)

	decode := buildStages(t, d, "b64 | zl")
	decoded, err := d.Run(decode, encoded, 0)
	require.NoError(t, err)
	require.Len(t, decoded, 1)
	assert.Equal(t, "Hello World", string(decoded[0].Payload))
}

// TestScopedMetaScenario mirrors spec.md §8's "Scoped meta" scenario:
// resplit fans a chunk out per line, and within the scoped group each
// fragment's own size is bound to "len" and rendered through cfmt.
// Segments are built directly (rather than through Parse) so the "\n"
// delimiter is a real newline byte, not the two literal characters a shell
// word would give it inside double quotes.
func TestScopedMetaScenario(t *testing.T) {
	d := NewDriver()
	segs := []Segment{
		{Unit: "resplit", Args: []string{"\n"}},
		{Bracket: "[|"},
		{Unit: "put", Args: []string{"len", "var:size"}},
		{Unit: "cfmt", Args: []string{"{len}:{}"}},
		{Bracket: "|]"},
	}
	stages, err := BuildTree(segs, func(seg Segment) (unit.Unit, bool, error) {
		return Build(d.evaluator(), seg)
	})
	require.NoError(t, err)

	out, err := d.Run(stages, []*chunk.Chunk{chunk.NewChunk([]byte("abc\ndef"))}, 0)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "3:abc", string(out[0].Payload))
	assert.Equal(t, "3:def", string(out[1].Payload))
}

// TestRoundTripCryptoScenario mirrors spec.md §8's "Round-trip crypto"
// scenario: encrypt with an IV derived from md5:x, re-attach that IV with
// ccp, then decrypt by slicing the IV back off the front with cut:0:16.
// This also regression-tests the pbkdf2 password/salt fix (review comment
// 1): the key must come out identical on both sides even though the
// payload differs between the encrypt and decrypt legs.
func TestRoundTripCryptoScenario(t *testing.T) {
	d := NewDriver()

	encrypt := buildStages(t, d, `emit hi | aes --iv md5:x pbkdf2[32,s]:pw -R`)
	ciphertext, err := d.Run(encrypt, []*chunk.Chunk{chunk.NewChunk(nil)}, 0)
	require.NoError(t, err)
	require.Len(t, ciphertext, 1)

	decrypt := buildStages(t, d, `ccp md5:x | aes --iv cut:0:16 pbkdf2[32,s]:pw`)
	plaintext, err := d.Run(decrypt, ciphertext, 0)
	require.NoError(t, err)
	require.Len(t, plaintext, 1)
	assert.Equal(t, "hi", string(plaintext[0].Payload))
}

// TestAesModeAndIvFlagsParseAndRoundTrip regression-tests review comment 3:
// pipeline.Build must parse aes's --mode/--iv named flags out of a unit
// invocation's argv, not just bare positional expressions.
func TestAesModeAndIvFlagsParseAndRoundTrip(t *testing.T) {
	d := NewDriver()

	encrypt := buildStages(t, d, `emit "attack at dawn" | aes --mode cbc --iv fedcba9876543210 0123456789abcdef -R`)
	ciphertext, err := d.Run(encrypt, []*chunk.Chunk{chunk.NewChunk(nil)}, 0)
	require.NoError(t, err)
	require.Len(t, ciphertext, 1)

	decrypt := buildStages(t, d, `aes --mode cbc --iv fedcba9876543210 0123456789abcdef`)
	plaintext, err := d.Run(decrypt, ciphertext, 0)
	require.NoError(t, err)
	require.Len(t, plaintext, 1)
	assert.Equal(t, "attack at dawn", string(plaintext[0].Payload))
}
