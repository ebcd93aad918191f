package config

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// GitignoreMatcher evaluates a walked file's relative path against the
// patterns found in a .gitignore at the project root, composed on top of
// the configured include/exclude globs (SPEC_FULL.md "Gitignore-aware
// exclusion").
type GitignoreMatcher struct {
	patterns []gitignorePattern
}

type gitignorePattern struct {
	glob      string
	negate    bool
	dirOnly   bool
	anchored  bool // pattern contained a "/" other than trailing, so it's rooted
}

// LoadGitignore reads `<root>/.gitignore`. A missing file yields an empty,
// always-pass matcher rather than an error.
func LoadGitignore(root string) (*GitignoreMatcher, error) {
	m := &GitignoreMatcher{}
	f, err := os.Open(filepath.Join(root, ".gitignore"))
	if err != nil {
		return m, nil
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		m.patterns = append(m.patterns, parseGitignoreLine(line))
	}
	return m, scanner.Err()
}

func parseGitignoreLine(line string) gitignorePattern {
	p := gitignorePattern{}
	if strings.HasPrefix(line, "!") {
		p.negate = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		p.dirOnly = true
		line = strings.TrimSuffix(line, "/")
	}
	if strings.Contains(line, "/") {
		p.anchored = true
		line = strings.TrimPrefix(line, "/")
		p.glob = line
	} else {
		// Unanchored single-segment patterns match at any depth.
		p.glob = "**/" + line
	}
	if !strings.Contains(p.glob, "*") && !p.anchored {
		// Plain basename: match the name itself or any path ending in it.
		p.glob = "**/" + line
	}
	return p
}

// Ignored reports whether relPath (forward-slash, project-root-relative)
// is excluded by the loaded .gitignore. Later matching patterns override
// earlier ones, and "!"-prefixed patterns re-include.
func (m *GitignoreMatcher) Ignored(relPath string, isDir bool) bool {
	if m == nil {
		return false
	}
	ignored := false
	for _, p := range m.patterns {
		if p.dirOnly && !isDir {
			// A directory-only pattern can still match a path that is a
			// descendant of an ignored directory; doublestar's "**" glob
			// already covers that when the glob ends in "/**" — here we
			// additionally check the bare prefix match.
			if ok, _ := doublestar.Match(p.glob+"/**", relPath); ok {
				ignored = !p.negate
			}
			continue
		}
		if ok, _ := doublestar.Match(p.glob, relPath); ok {
			ignored = !p.negate
		}
	}
	return ignored
}
