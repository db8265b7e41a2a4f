package refineryerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArgumentErrorIsFatalWithExitTwo(t *testing.T) {
	err := NewArgument("hex", "bad argument %d", 3)
	assert.True(t, err.Fatal())
	assert.Equal(t, 2, err.ExitCode())
	assert.Equal(t, "argument error in hex: bad argument 3", err.Error())
}

func TestFrameErrorIsFatalWithExitOne(t *testing.T) {
	err := NewFrame(errors.New("corrupt stream"))
	assert.True(t, err.Fatal())
	assert.Equal(t, 1, err.ExitCode())
}

func TestUnitErrorIsNotFatal(t *testing.T) {
	err := NewUnit("aes", errors.New("bad key length"))
	assert.False(t, err.Fatal())
	assert.Equal(t, 0, err.ExitCode())
	assert.Equal(t, "unit error in aes: bad key length", err.Error())
}

func TestIOErrorUnwraps(t *testing.T) {
	cause := errors.New("broken pipe")
	err := NewIO(cause)
	assert.False(t, err.Fatal())
	assert.ErrorIs(t, err, cause)
}
