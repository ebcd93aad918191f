package query

import (
	"path/filepath"
	"strings"
)

// DependencyEdge is one resolved (or external) import relationship.
type DependencyEdge struct {
	From       string
	To         string // resolved absolute path, or the raw source if unresolved/external
	IsExternal bool
	IsTypeOnly bool
	Reverse    bool // true if this edge was found walking include_reverse
}

// ModuleDependencies is get_module_dependencies' result.
type ModuleDependencies struct {
	FilePath string
	Edges    []DependencyEdge
	Cycles   [][]string
}

var sourceExtensions = []string{".ts", ".tsx", ".js", ".jsx", ".mts", ".mjs", ".py", "/index.ts", "/index.tsx", "/index.js"}

// resolveImportSource attempts to map a relative import source to an
// indexed file, the way a bundler's resolver would for the handful of
// extensions this system parses.
func (a *API) resolveImportSource(fromFile, source string) (string, bool) {
	if !strings.HasPrefix(source, ".") && !strings.HasPrefix(source, "/") {
		return "", false
	}
	base := source
	if strings.HasPrefix(source, ".") {
		base = filepath.Join(filepath.Dir(fromFile), source)
	}
	candidates := append([]string{base}, func() []string {
		var out []string
		for _, ext := range sourceExtensions {
			out = append(out, base+ext)
		}
		return out
	}()...)
	for _, c := range candidates {
		if _, err := a.Store.GetFile(c); err == nil {
			return c, true
		}
	}
	return "", false
}

// GetModuleDependencies implements get_module_dependencies: a BFS over the
// import graph from filePath, optionally including reverse dependents.
func (a *API) GetModuleDependencies(filePath string, depth int, includeReverse, includeExternal, includeTypeOnly, detectCycles bool) (*ModuleDependencies, error) {
	if depth < 1 {
		depth = 1
	}
	if depth > 5 {
		depth = 5
	}
	resolved, err := a.resolvePath(nil, filePath)
	if err != nil {
		return nil, err
	}

	result := &ModuleDependencies{FilePath: resolved}
	visited := map[string]bool{resolved: true}
	frontier := []string{resolved}

	for d := 0; d < depth; d++ {
		var next []string
		for _, cur := range frontier {
			imports, err := a.Store.ImportsForFile(cur)
			if err != nil {
				continue
			}
			for _, imp := range imports {
				if imp.IsTypeOnly && !includeTypeOnly {
					continue
				}
				target, ok := a.resolveImportSource(cur, imp.Source)
				if !ok {
					if !includeExternal {
						continue
					}
					result.Edges = append(result.Edges, DependencyEdge{From: cur, To: imp.Source, IsExternal: true, IsTypeOnly: imp.IsTypeOnly})
					continue
				}
				result.Edges = append(result.Edges, DependencyEdge{From: cur, To: target, IsTypeOnly: imp.IsTypeOnly})
				if !visited[target] {
					visited[target] = true
					next = append(next, target)
				}
			}
		}
		frontier = next
		if len(frontier) == 0 {
			break
		}
	}

	if includeReverse {
		all, err := a.Store.AllImportRows()
		if err == nil {
			for _, fi := range all {
				target, ok := a.resolveImportSource(fi.FilePath, fi.Import.Source)
				if ok && target == resolved {
					result.Edges = append(result.Edges, DependencyEdge{From: fi.FilePath, To: resolved, Reverse: true, IsTypeOnly: fi.Import.IsTypeOnly})
				}
			}
		}
	}

	if detectCycles {
		result.Cycles = findCycles(resolved, result.Edges)
	}
	return result, nil
}

// findCycles does a simple DFS cycle search over the forward (non-reverse)
// edges gathered above.
func findCycles(start string, edges []DependencyEdge) [][]string {
	adj := make(map[string][]string)
	for _, e := range edges {
		if e.Reverse || e.IsExternal {
			continue
		}
		adj[e.From] = append(adj[e.From], e.To)
	}

	var cycles [][]string
	var path []string
	onPath := make(map[string]int)

	var dfs func(node string)
	dfs = func(node string) {
		if idx, ok := onPath[node]; ok {
			cycle := append([]string{}, path[idx:]...)
			cycle = append(cycle, node)
			cycles = append(cycles, cycle)
			return
		}
		onPath[node] = len(path)
		path = append(path, node)
		for _, next := range adj[node] {
			dfs(next)
		}
		path = path[:len(path)-1]
		delete(onPath, node)
	}
	dfs(start)
	return cycles
}
