package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/codeindex/internal/types"
)

type stubParser struct {
	lang string
	exts []string
}

func (p stubParser) Language() string   { return p.lang }
func (p stubParser) Extensions() []string { return p.exts }
func (p stubParser) ParseFile(path string, content []byte, maxFileSize int64, includePrivate bool) (*types.ParseResult, error) {
	return &types.ParseResult{}, nil
}

func TestRegistryResolvesByExtensionCaseInsensitively(t *testing.T) {
	r := NewRegistry()
	r.Register(stubParser{lang: "stub", exts: []string{".stub"}})

	p, ok := r.ForPath("main.STUB")
	require.True(t, ok)
	assert.Equal(t, "stub", p.Language())
}

func TestRegistryForLanguageAndCanParse(t *testing.T) {
	r := NewRegistry()
	r.Register(stubParser{lang: "stub", exts: []string{".stub"}})

	assert.True(t, r.CanParse("x.stub"))
	assert.False(t, r.CanParse("x.unknown"))

	p, ok := r.ForLanguage("stub")
	require.True(t, ok)
	assert.Equal(t, "stub", p.Language())

	_, ok = r.ForLanguage("nope")
	assert.False(t, ok)
}

func TestRegistryLaterRegistrationOverridesExtension(t *testing.T) {
	r := NewRegistry()
	r.Register(stubParser{lang: "first", exts: []string{".x"}})
	r.Register(stubParser{lang: "second", exts: []string{".x"}})

	p, ok := r.ForPath("f.x")
	require.True(t, ok)
	assert.Equal(t, "second", p.Language())
}

func TestDefaultRegistryRecognizesConfigAndSourceExtensions(t *testing.T) {
	r := Default()
	assert.True(t, r.CanParse("package.json"))
	assert.True(t, r.CanParse("main.ts"))
	assert.True(t, r.CanParse("main.py"))
	assert.False(t, r.CanParse("README.md"))
}
