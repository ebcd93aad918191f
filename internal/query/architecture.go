package query

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/standardbeagle/codeindex/internal/storage"
	"github.com/standardbeagle/codeindex/internal/types"
)

func listAllFilesOptions() storage.ListFilesOptions {
	return storage.ListFilesOptions{IncludeTests: true}
}

// ModuleGroup is one group_by bucket (e.g. one top-level directory).
type ModuleGroup struct {
	Key       string
	FileCount int
	Files     []string
}

// DependencyCount summarizes one file's fan-in/fan-out for the
// "dependencies" focus.
type DependencyCount struct {
	FilePath   string
	ImportedBy int // not populated by GetArchitectureOverview; always 0
	Imports    int
}

// PatternHit is a naming-convention match for the "patterns" focus — a
// cheap heuristic, not static analysis.
type PatternHit struct {
	Pattern  string
	Symbol   string
	FilePath string
}

// Overview is get_architecture_overview's result. Only the fields relevant
// to the requested focus are populated.
type Overview struct {
	Focus       string
	Modules     []ModuleGroup
	EntryPoints []types.FileRecord
	Dependencies []DependencyCount
	PublicAPI   []types.Symbol
	CoreClasses []types.ClassSignature
	Patterns    []PatternHit
}

var entryPointBasenames = map[string]bool{
	"index": true, "main": true, "app": true, "server": true, "cli": true,
}

var patternSuffixes = []string{"Factory", "Builder", "Singleton", "Observer", "Strategy", "Adapter", "Decorator", "Repository", "Controller", "Service"}

// GetArchitectureOverview implements get_architecture_overview. focus
// narrows which sections are computed; "full" computes all of them.
func (a *API) GetArchitectureOverview(focus, groupBy string) (*Overview, error) {
	if focus == "" {
		focus = "full"
	}
	ov := &Overview{Focus: focus}

	files, err := a.Store.ListFiles(listAllFilesOptions())
	if err != nil {
		return nil, err
	}

	if focus == "full" || focus == "modules" {
		ov.Modules = groupFiles(files, groupBy)
	}
	if focus == "full" || focus == "entry_points" {
		for _, f := range files {
			base := strings.TrimSuffix(filepath.Base(f.RelativePath), filepath.Ext(f.RelativePath))
			if entryPointBasenames[strings.ToLower(base)] {
				ov.EntryPoints = append(ov.EntryPoints, f)
			}
		}
	}
	if focus == "full" || focus == "dependencies" {
		imports, err := a.Store.AllImportRows()
		if err == nil {
			counts := make(map[string]int)
			for _, fi := range imports {
				counts[fi.FilePath]++
			}
			for path, n := range counts {
				ov.Dependencies = append(ov.Dependencies, DependencyCount{FilePath: path, Imports: n})
			}
			sort.Slice(ov.Dependencies, func(i, j int) bool { return ov.Dependencies[i].Imports > ov.Dependencies[j].Imports })
		}
	}

	if focus == "full" || focus == "public_api" || focus == "core_classes" || focus == "patterns" {
		symbols, err := a.Store.AllSymbolRows()
		if err != nil {
			return nil, err
		}
		if focus == "full" || focus == "public_api" {
			for _, sym := range symbols {
				if !isPrivateSymbol(sym) {
					ov.PublicAPI = append(ov.PublicAPI, sym)
				}
			}
		}
		if focus == "full" || focus == "core_classes" {
			var classes []types.ClassSignature
			for _, sym := range symbols {
				if cls, ok := sym.(types.ClassSignature); ok {
					classes = append(classes, cls)
				}
			}
			sort.Slice(classes, func(i, j int) bool {
				return classes[i].MethodCount+classes[i].PropertyCount > classes[j].MethodCount+classes[j].PropertyCount
			})
			if len(classes) > 20 {
				classes = classes[:20]
			}
			ov.CoreClasses = classes
		}
		if focus == "full" || focus == "patterns" {
			for _, sym := range symbols {
				if sym.Kind() != types.KindClass {
					continue
				}
				for _, suffix := range patternSuffixes {
					if strings.HasSuffix(sym.Name(), suffix) {
						ov.Patterns = append(ov.Patterns, PatternHit{Pattern: suffix, Symbol: sym.Name(), FilePath: sym.Loc().FilePath})
					}
				}
			}
		}
	}

	return ov, nil
}

func groupFiles(files []types.FileRecord, groupBy string) []ModuleGroup {
	groups := make(map[string]*ModuleGroup)
	var order []string
	for _, f := range files {
		key := groupKey(f, groupBy)
		g, ok := groups[key]
		if !ok {
			g = &ModuleGroup{Key: key}
			groups[key] = g
			order = append(order, key)
		}
		g.FileCount++
		g.Files = append(g.Files, f.RelativePath)
	}
	sort.Strings(order)
	out := make([]ModuleGroup, 0, len(order))
	for _, k := range order {
		out = append(out, *groups[k])
	}
	return out
}

func groupKey(f types.FileRecord, groupBy string) string {
	switch groupBy {
	case "language":
		return f.Language
	default: // directory
		dir := filepath.Dir(f.RelativePath)
		if dir == "." {
			return "(root)"
		}
		if i := strings.IndexByte(dir, '/'); i >= 0 {
			return dir[:i]
		}
		return dir
	}
}
