package pathresolve

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeFileLister struct {
	paths []string
}

func (f *fakeFileLister) AllRelativePaths() []string {
	return f.paths
}

func (f *fakeFileLister) RelativePathsIn(directory string) []string {
	var out []string
	prefix := directory + "/"
	for _, p := range f.paths {
		if strings.HasPrefix(p, prefix) {
			out = append(out, p)
		}
	}
	return out
}

func newResolver(paths ...string) *Resolver {
	return New("/repo", &fakeFileLister{paths: paths})
}

func TestResolveExactMatch(t *testing.T) {
	r := newResolver("src/foo.go", "src/bar.go")

	res := r.Resolve("src/foo.go")
	assert.True(t, res.Ok)
	assert.Equal(t, "src/foo.go", res.RelativePath)
	assert.False(t, res.AutoResolved)
}

func TestResolveUniqueSuffixMatch(t *testing.T) {
	r := newResolver("internal/storage/storage.go", "internal/query/api.go")

	res := r.Resolve("storage.go")
	assert.True(t, res.Ok)
	assert.Equal(t, "internal/storage/storage.go", res.RelativePath)
	assert.True(t, res.AutoResolved)
}

func TestResolveAmbiguousSuffixMatch(t *testing.T) {
	r := newResolver("a/types.go", "b/types.go")

	res := r.Resolve("types.go")
	assert.False(t, res.Ok)
	assert.Equal(t, "ambiguous", string(res.FailureType))
	assert.ElementsMatch(t, []string{"a/types.go", "b/types.go"}, res.AvailablePaths)
}

func TestResolveNotFoundFallsBackToAncestorAndFuzzy(t *testing.T) {
	r := newResolver("internal/storage/storage.go", "internal/storage/schema.go")

	res := r.Resolve("internal/storage/storrage.go")
	assert.False(t, res.Ok)
	assert.Equal(t, "not_found", string(res.FailureType))
	assert.Equal(t, "internal/storage", res.SearchedDirectory)
	assert.NotEmpty(t, res.Suggestions)
}

func TestResolveNormalizesSlashesAndDotPrefix(t *testing.T) {
	r := newResolver("src/foo.go")

	res := r.Resolve(`./src/foo.go`)
	assert.True(t, res.Ok)
	assert.Equal(t, "src/foo.go", res.RelativePath)
}
