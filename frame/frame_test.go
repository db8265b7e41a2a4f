package frame

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/binref/refinery-go/chunk"
)

func TestRoundTripSingleChunk(t *testing.T) {
	c := chunk.NewChunk([]byte("hello world"))
	require.NoError(t, c.Meta().Set("name", chunk.StringValue("greeting"), 0))
	require.NoError(t, c.Meta().Set("count", chunk.IntValue(-42), 0))
	require.NoError(t, c.Meta().Set("raw", chunk.BytesValue([]byte{1, 2, 3}), 0))
	require.NoError(t, c.Meta().Set("tags", chunk.ListValue([]chunk.Value{
		chunk.StringValue("a"), chunk.IntValue(9),
	}), 0))

	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	require.NoError(t, enc.WriteChunk(c))

	dec := NewDecoder(&buf)
	rec, err := dec.Next()
	require.NoError(t, err)
	require.Equal(t, RecordChunk, rec.Kind)
	assert.Equal(t, c.Payload, rec.Chunk.Payload)

	for _, name := range []string{"name", "count", "raw", "tags"} {
		want, _ := c.Meta().Get(name)
		got, ok := rec.Chunk.Meta().Get(name)
		require.True(t, ok, "missing meta %q after round trip", name)
		assert.True(t, want.Equal(got), "meta %q mismatch: %+v != %+v", name, want, got)
	}

	_, err = dec.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestRoundTripSequenceWithBrackets(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)

	c0 := chunk.NewChunk([]byte("outer"))
	require.NoError(t, enc.WriteChunk(c0))
	require.NoError(t, enc.Open())
	c1 := chunk.NewChunk([]byte("inner-1"))
	require.NoError(t, enc.WriteChunk(c1))
	c2 := chunk.NewChunk([]byte("inner-2"))
	require.NoError(t, enc.WriteChunk(c2))
	require.NoError(t, enc.Close())
	c3 := chunk.NewChunk([]byte("outer-2"))
	require.NoError(t, enc.WriteChunk(c3))

	dec := NewDecoder(&buf)

	rec, err := dec.Next()
	require.NoError(t, err)
	require.Equal(t, RecordChunk, rec.Kind)
	assert.Equal(t, []byte("outer"), rec.Chunk.Payload)
	assert.Equal(t, 0, dec.Depth())

	rec, err = dec.Next()
	require.NoError(t, err)
	assert.Equal(t, RecordOpen, rec.Kind)
	assert.Equal(t, 1, dec.Depth())

	rec, err = dec.Next()
	require.NoError(t, err)
	assert.Equal(t, []byte("inner-1"), rec.Chunk.Payload)

	rec, err = dec.Next()
	require.NoError(t, err)
	assert.Equal(t, []byte("inner-2"), rec.Chunk.Payload)

	rec, err = dec.Next()
	require.NoError(t, err)
	assert.Equal(t, RecordClose, rec.Kind)
	assert.Equal(t, 0, dec.Depth())

	rec, err = dec.Next()
	require.NoError(t, err)
	assert.Equal(t, []byte("outer-2"), rec.Chunk.Payload)

	_, err = dec.Next()
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 1, dec.MaxDepthSeen())
}

func TestUnmatchedCloseIsFatal(t *testing.T) {
	enc := &Encoder{}
	var buf bytes.Buffer
	enc.w = &buf
	err := enc.Close()
	assert.Error(t, err)
}

func TestDecoderRejectsUnmatchedClose(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(Magic[:])
	buf.WriteByte(Version)
	buf.WriteByte(tagClose)

	dec := NewDecoder(&buf)
	_, err := dec.Next()
	assert.Error(t, err)
}

func TestDecoderRejectsUnknownTag(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(Magic[:])
	buf.WriteByte(Version)
	buf.WriteByte(0x99)

	dec := NewDecoder(&buf)
	_, err := dec.Next()
	assert.Error(t, err)
}

func TestRawFallbackWithoutMagic(t *testing.T) {
	buf := bytes.NewBufferString("just some plain bytes, no framing here")
	dec := NewDecoder(buf)

	rec, err := dec.Next()
	require.NoError(t, err)
	require.Equal(t, RecordChunk, rec.Kind)
	assert.Equal(t, "just some plain bytes, no framing here", string(rec.Chunk.Payload))
	assert.True(t, rec.Chunk.Visible)
	assert.Equal(t, 0, rec.Chunk.ScopeDepth)

	_, err = dec.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestVisibilityBitRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	c := chunk.NewChunk([]byte("hidden"))
	c.Visible = false
	require.NoError(t, enc.WriteChunk(c))

	dec := NewDecoder(&buf)
	rec, err := dec.Next()
	require.NoError(t, err)
	assert.False(t, rec.Chunk.Visible)
}

func TestEncodeDeterministicForFixedMetaOrder(t *testing.T) {
	c := chunk.NewChunk([]byte("x"))
	require.NoError(t, c.Meta().Set("b", chunk.IntValue(2), 0))
	require.NoError(t, c.Meta().Set("a", chunk.IntValue(1), 0))

	buf1, err := EncodeChunk(nil, c)
	require.NoError(t, err)
	buf2, err := EncodeChunk(nil, c)
	require.NoError(t, err)
	assert.Equal(t, buf1, buf2, "encoding must be prefix-deterministic (spec.md invariant 1)")
}
