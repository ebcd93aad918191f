// Package pathresolve turns user-supplied path fragments into indexed file
// paths: exact match, suffix match, or fuzzy/ancestor-directory suggestions.
package pathresolve

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/standardbeagle/codeindex/internal/types"
)

// FileLister is the storage-side dependency: every indexed relative path,
// and the files living in one directory (for the ancestor-directory
// suggestion tier).
type FileLister interface {
	AllRelativePaths() []string
	RelativePathsIn(directory string) []string
}

const maxFuzzySuggestions = 5

// Resolver resolves user-facing path fragments against the index.
type Resolver struct {
	root  string
	files FileLister
}

func New(root string, files FileLister) *Resolver {
	return &Resolver{root: root, files: files}
}

func normalize(input string) string {
	s := strings.TrimSpace(input)
	s = strings.ReplaceAll(s, "\\", "/")
	s = strings.TrimPrefix(s, "./")
	for strings.Contains(s, "//") {
		s = strings.ReplaceAll(s, "//", "/")
	}
	return filepath.ToSlash(filepath.Clean(s))
}

// Resolve implements the four-step resolution order from §4.3: exact
// absolute match, exact root-relative match, unique path-suffix match, then
// ancestor-directory + fuzzy suggestions.
func (r *Resolver) Resolve(input string) types.Resolution {
	original := input
	norm := normalize(input)

	if filepath.IsAbs(input) {
		rel, err := filepath.Rel(r.root, input)
		if err == nil {
			rel = filepath.ToSlash(rel)
			if r.exists(rel) {
				return types.Success(input, rel, false, "")
			}
		}
	}

	if r.exists(norm) {
		abs := filepath.Join(r.root, norm)
		return types.Success(abs, norm, false, "")
	}

	matches := r.suffixMatches(norm)
	switch len(matches) {
	case 1:
		abs := filepath.Join(r.root, matches[0])
		return types.Success(abs, matches[0], true, original)
	case 0:
		// fall through to approximate suggestions
	default:
		sort.Strings(matches)
		return types.Ambiguous(matches)
	}

	dir := nearestExistingAncestor(norm, r.files)
	suggestions := r.files.RelativePathsIn(dir)
	suggestions = append(suggestions, r.fuzzyCandidates(norm)...)
	suggestions = dedupe(suggestions)
	return types.NotFound(dir, suggestions)
}

func (r *Resolver) exists(relPath string) bool {
	for _, p := range r.files.AllRelativePaths() {
		if p == relPath {
			return true
		}
	}
	return false
}

// suffixMatches returns every indexed relative path that equals norm or
// ends with "/"+norm.
func (r *Resolver) suffixMatches(norm string) []string {
	var out []string
	suffix := "/" + norm
	for _, p := range r.files.AllRelativePaths() {
		if p == norm || strings.HasSuffix(p, suffix) {
			out = append(out, p)
		}
	}
	return out
}

// fuzzyCandidates ranks every indexed path by Jaro-Winkler similarity to
// norm's base name, returning up to maxFuzzySuggestions.
func (r *Resolver) fuzzyCandidates(norm string) []string {
	target := filepath.Base(norm)
	type scored struct {
		path  string
		score float64
	}
	var candidates []scored
	for _, p := range r.files.AllRelativePaths() {
		score, err := edlib.StringsSimilarity(target, filepath.Base(p), edlib.JaroWinkler)
		if err != nil {
			continue
		}
		if float64(score) >= 0.6 {
			candidates = append(candidates, scored{p, float64(score)})
		}
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })
	if len(candidates) > maxFuzzySuggestions {
		candidates = candidates[:maxFuzzySuggestions]
	}
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.path
	}
	return out
}

// nearestExistingAncestor walks up norm's directory chain looking for one
// that actually holds indexed files.
func nearestExistingAncestor(norm string, files FileLister) string {
	dir := filepath.Dir(norm)
	for dir != "." && dir != "/" && dir != "" {
		if len(files.RelativePathsIn(dir)) > 0 {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "."
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
