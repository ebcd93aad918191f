package codeerrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	t.Run("with path", func(t *testing.T) {
		err := New(PathNotFound, "src/foo.go", "no such symbol")
		assert.Equal(t, "PATH_NOT_FOUND: src/foo.go: no such symbol", err.Error())
	})

	t.Run("without path", func(t *testing.T) {
		err := New(ConfigInvalid, "", "missing root directory")
		assert.Equal(t, "CONFIG_INVALID: missing root directory", err.Error())
	})
}

func TestWrapUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(IOError, "index.db", cause)

	assert.Equal(t, cause, err.Unwrap())
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "disk full")
}

func TestIsMatchesByKindOnly(t *testing.T) {
	a := New(PathNotFound, "a.go", "first message")
	b := New(PathNotFound, "b.go", "different message entirely")
	c := New(SymbolNotFound, "a.go", "first message")

	assert.True(t, errors.Is(a, b), "same kind, different path/message should still match")
	assert.False(t, errors.Is(a, c), "different kind should not match")
}

func TestSeverity(t *testing.T) {
	assert.Equal(t, SeverityFatal, StoreIntegrity.Severity())

	for _, k := range []Kind{FileTooLarge, ParseError, ConfigInvalid, IOError, PathNotFound, PathAmbiguous, SymbolNotFound} {
		assert.Equal(t, SeverityWarning, k.Severity(), "kind %s should be a warning", k)
	}
}
