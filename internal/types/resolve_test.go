package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuccessResolution(t *testing.T) {
	r := Success("/root/a.go", "a.go", true, "a")
	assert.True(t, r.Ok)
	assert.Equal(t, "/root/a.go", r.ResolvedPath)
	assert.Equal(t, "a.go", r.RelativePath)
	assert.True(t, r.AutoResolved)
	assert.Equal(t, "a", r.OriginalInput)
	assert.Empty(t, r.FailureType)
}

func TestNotFoundResolution(t *testing.T) {
	r := NotFound("src/", []string{"src/a.go", "src/b.go"})
	assert.False(t, r.Ok)
	assert.Equal(t, FailureNotFound, r.FailureType)
	assert.Equal(t, "src/", r.SearchedDirectory)
	assert.Equal(t, []string{"src/a.go", "src/b.go"}, r.Suggestions)
}

func TestAmbiguousResolution(t *testing.T) {
	r := Ambiguous([]string{"a/foo.go", "b/foo.go"})
	assert.False(t, r.Ok)
	assert.Equal(t, FailureAmbiguous, r.FailureType)
	assert.Equal(t, []string{"a/foo.go", "b/foo.go"}, r.AvailablePaths)
	assert.Equal(t, r.AvailablePaths, r.Suggestions)
}
