// Package parser hosts the language-specific extractors that turn a source
// buffer into a normalized types.ParseResult (spec.md §4.1), plus the
// registry that dispatches by file extension (spec.md §4.2).
package parser

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/standardbeagle/codeindex/internal/types"
)

// LanguageParser is the contract every language-specific extractor
// satisfies. parseFile never panics: a file over the size cap or one the
// grammar rejects still returns a ParseResult (possibly empty/partial).
type LanguageParser interface {
	Language() string
	Extensions() []string
	ParseFile(path string, content []byte, maxFileSize int64, includePrivate bool) (*types.ParseResult, error)
}

// Registry maps file extension (and language name) to a LanguageParser. It
// is process-wide, lazily initialized once, and read-only thereafter
// (spec.md §9 "global mutable state" note).
type Registry struct {
	byExt  map[string]LanguageParser
	byLang map[string]LanguageParser
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default returns the process-wide registry, constructing it on first use.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultReg = NewRegistry()
		defaultReg.Register(NewTSJSParser())
		defaultReg.Register(NewPythonParser())
		defaultReg.Register(NewConfigParser())
	})
	return defaultReg
}

// NewRegistry builds an empty registry. Exposed for tests that want to
// register a controlled subset of parsers.
func NewRegistry() *Registry {
	return &Registry{
		byExt:  make(map[string]LanguageParser),
		byLang: make(map[string]LanguageParser),
	}
}

// Register adds a parser for all of its declared extensions.
func (r *Registry) Register(p LanguageParser) {
	r.byLang[p.Language()] = p
	for _, ext := range p.Extensions() {
		r.byExt[strings.ToLower(ext)] = p
	}
}

// CanParse reports whether some registered parser claims path's extension.
func (r *Registry) CanParse(path string) bool {
	_, ok := r.ForPath(path)
	return ok
}

// ForPath resolves the parser for a path by its (case-insensitive)
// extension.
func (r *Registry) ForPath(path string) (LanguageParser, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	p, ok := r.byExt[ext]
	return p, ok
}

// ForLanguage resolves a parser by language name.
func (r *Registry) ForLanguage(lang string) (LanguageParser, bool) {
	p, ok := r.byLang[lang]
	return p, ok
}
