package query

import (
	"fmt"
	"strings"

	"github.com/standardbeagle/codeindex/internal/types"
)

// RelatedContext is get_related_context's bundled result: the symbol
// itself plus whatever related material fit within maxTokens.
type RelatedContext struct {
	Symbol     types.Symbol
	Types      []types.TypeRelationship
	Callees    []types.CallGraphEdge
	References []types.SymbolReference
	Truncated  bool
}

// approxTokens estimates token count the way a quick budget check would:
// ~4 characters per token, good enough to decide when to stop appending.
func approxTokens(s string) int { return len(s)/4 + 1 }

// GetRelatedContext implements get_related_context: bundle a symbol's
// definition with its type relationships, transitive callees (up to
// calleeDepth) and references to its name from any file (test files only
// when includeTests is set), stopping once maxTokens is spent.
func (a *API) GetRelatedContext(symbolName, filePath string, includeTypes, includeCallees, includeTests bool, calleeDepth, maxTokens int) (*RelatedContext, error) {
	if calleeDepth < 1 {
		calleeDepth = 1
	}
	if calleeDepth > 2 {
		calleeDepth = 2
	}
	if maxTokens <= 0 {
		maxTokens = 4000
	}

	var sym types.Symbol
	if filePath != "" {
		resolved, err := a.resolvePath(nil, filePath)
		if err != nil {
			return nil, err
		}
		syms, err := a.Store.SymbolsInFile(resolved)
		if err != nil {
			return nil, err
		}
		for _, s := range syms {
			if s.Name() == symbolName {
				sym = s
				break
			}
		}
	} else {
		matches, err := a.Store.SymbolsByName(symbolName)
		if err != nil {
			return nil, err
		}
		if len(matches) > 0 {
			sym = matches[0]
		}
	}
	if sym == nil {
		return nil, fmt.Errorf("symbol %q not found", symbolName)
	}

	ctx := &RelatedContext{Symbol: sym}
	spent := approxTokens(sym.Name()) + approxTokens(string(sym.Kind()))

	if includeTypes {
		rels, err := a.Store.GetTypeHierarchyByName(sym.Name())
		if err == nil {
			for _, r := range rels {
				cost := approxTokens(r.TargetName)
				if spent+cost > maxTokens {
					ctx.Truncated = true
					break
				}
				ctx.Types = append(ctx.Types, r)
				spent += cost
			}
		}
	}

	if includeCallees {
		frontier := []string{sym.Name()}
		seen := map[string]bool{sym.Name(): true}
		for d := 0; d < calleeDepth && !ctx.Truncated; d++ {
			var next []string
			for _, name := range frontier {
				edges, err := a.Store.GetCalleesByName(name)
				if err != nil {
					continue
				}
				for _, e := range edges {
					cost := approxTokens(e.CalleeName)
					if spent+cost > maxTokens {
						ctx.Truncated = true
						break
					}
					ctx.Callees = append(ctx.Callees, e)
					spent += cost
					if !seen[e.CalleeName] {
						seen[e.CalleeName] = true
						next = append(next, e.CalleeName)
					}
				}
				if ctx.Truncated {
					break
				}
			}
			frontier = next
		}
	}

	refs, err := a.Store.GetReferencesByName(sym.Name())
	if err == nil {
		for _, r := range refs {
			if !includeTests && looksLikeTestFile(r.ReferencingFile) {
				continue
			}
			cost := approxTokens(r.Context)
			if spent+cost > maxTokens {
				ctx.Truncated = true
				break
			}
			ctx.References = append(ctx.References, r)
			spent += cost
		}
	}

	return ctx, nil
}

func looksLikeTestFile(path string) bool {
	for _, marker := range []string{".test.", ".spec.", "_test."} {
		if strings.Contains(path, marker) {
			return true
		}
	}
	return false
}
