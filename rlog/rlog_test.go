package rlog

import (
	"bytes"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWarnFormatsUnitAndMessage(t *testing.T) {
	nowFunc = func() time.Time { return time.Date(2026, 1, 1, 9, 5, 3, 0, time.UTC) }
	defer func() { nowFunc = time.Now }()

	r, w, err := os.Pipe()
	assert.NoError(t, err)
	orig := os.Stderr
	os.Stderr = w
	defer func() { os.Stderr = orig }()

	Warn("hex", assertErr{"bad nibble"})
	w.Close()

	var buf bytes.Buffer
	buf.ReadFrom(r)
	assert.Equal(t, "(09:05:03) failure in hex: bad nibble\n", buf.String())
}

type assertErr struct{ msg string }

func (e assertErr) Error() string { return e.msg }
