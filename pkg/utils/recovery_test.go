package utils

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecoverAsErrorWith(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	fn := func() (err error) {
		defer RecoverAsErrorWith(logger, &err)
		var m map[string]int
		m["boom"] = 1
		return nil
	}

	err := fn()
	var panicErr *PanicError
	require.ErrorAs(t, err, &panicErr)
	assert.Contains(t, buf.String(), "Recovered from panic")
}

func TestRecoverAsErrorWithNilLogger(t *testing.T) {
	cause := errors.New("index out of range")
	fn := func() (err error) {
		defer RecoverAsErrorWith(nil, &err)
		panic(cause)
	}
	assert.ErrorIs(t, fn(), cause)

	ok := func() (err error) {
		defer RecoverAsErrorWith(nil, &err)
		return nil
	}
	assert.NoError(t, ok())
}

func TestPanicErrorString(t *testing.T) {
	err := &PanicError{Value: "test value"}
	assert.Equal(t, "panic: test value", err.Error())
	assert.Nil(t, err.Unwrap())
}
