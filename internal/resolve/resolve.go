// Package resolve implements the cross-file ID resolution pass: filling in
// callee_symbol_id / reference symbol_id / type_relationship target_symbol_id
// columns left empty by the per-file indexing pass, since a reference to a
// symbol defined in another file can't be resolved until that file is
// indexed too.
package resolve

import (
	"sort"

	"github.com/standardbeagle/codeindex/internal/storage"
	"github.com/standardbeagle/codeindex/internal/types"
)

// Summary reports how many of each unresolved row category were filled in.
type Summary struct {
	CallEdgesResolved     int
	ReferencesResolved    int
	TypeRelsResolved      int
	CallEdgesUnresolved   int
	ReferencesUnresolved  int
	TypeRelsUnresolved    int
}

// Run walks every row with an empty symbol id and fills in the most likely
// candidate by matching name against the symbol table, applying the
// ambiguity rules in order: same-file beats cross-file, exported beats
// non-exported, function kind beats other kinds (call edges only), and on
// persistent ambiguity the first symbol by (filePath, startLine) wins.
func Run(store *storage.Store) (Summary, error) {
	var sum Summary

	edges, err := store.UnresolvedCallEdges()
	if err != nil {
		return sum, err
	}
	for _, e := range edges {
		callerFile := ""
		if caller, err := store.GetSymbolByID(e.CallerSymbolID); err == nil {
			callerFile = caller.Loc().FilePath
		}
		candidates, err := store.SymbolsByName(e.CalleeName)
		if err != nil {
			continue
		}
		best := pickBest(candidates, callerFile, true)
		if best == nil {
			sum.CallEdgesUnresolved++
			continue
		}
		if err := store.SetCallEdgeCallee(e.ID, best.ID()); err == nil {
			sum.CallEdgesResolved++
		}
	}

	refs, err := store.UnresolvedReferences()
	if err != nil {
		return sum, err
	}
	for _, r := range refs {
		candidates, err := store.SymbolsByName(r.SymbolName)
		if err != nil {
			continue
		}
		best := pickBest(candidates, r.ReferencingFile, false)
		if best == nil {
			sum.ReferencesUnresolved++
			continue
		}
		if err := store.SetReferenceSymbol(r.ID, best.ID()); err == nil {
			sum.ReferencesResolved++
		}
	}

	rels, err := store.UnresolvedTypeRelationships()
	if err != nil {
		return sum, err
	}
	for _, t := range rels {
		sourceFile := ""
		if src, err := store.GetSymbolByID(t.SourceSymbolID); err == nil {
			sourceFile = src.Loc().FilePath
		}
		candidates, err := store.SymbolsByName(t.TargetName)
		if err != nil {
			continue
		}
		best := pickBest(candidates, sourceFile, false)
		if best == nil {
			sum.TypeRelsUnresolved++
			continue
		}
		if err := store.SetTypeRelationshipTarget(t.ID, best.ID()); err == nil {
			sum.TypeRelsResolved++
		}
	}

	return sum, nil
}

// pickBest narrows candidates through the ambiguity waterfall, returning nil
// only when there are no candidates at all.
func pickBest(candidates []types.Symbol, sameFile string, preferFunctionKind bool) types.Symbol {
	if len(candidates) == 0 {
		return nil
	}

	if sameFile != "" {
		if narrowed := filterSameFile(candidates, sameFile); len(narrowed) > 0 {
			candidates = narrowed
		}
	}

	if narrowed := filterExported(candidates); len(narrowed) > 0 {
		candidates = narrowed
	}

	if preferFunctionKind {
		if narrowed := filterFunctionKind(candidates); len(narrowed) > 0 {
			candidates = narrowed
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		li, lj := candidates[i].Loc(), candidates[j].Loc()
		if li.FilePath != lj.FilePath {
			return li.FilePath < lj.FilePath
		}
		return li.StartLine < lj.StartLine
	})
	return candidates[0]
}

func filterSameFile(candidates []types.Symbol, file string) []types.Symbol {
	var out []types.Symbol
	for _, c := range candidates {
		if c.Loc().FilePath == file {
			out = append(out, c)
		}
	}
	return out
}

func filterExported(candidates []types.Symbol) []types.Symbol {
	var out []types.Symbol
	for _, c := range candidates {
		if isExported(c) {
			out = append(out, c)
		}
	}
	return out
}

func filterFunctionKind(candidates []types.Symbol) []types.Symbol {
	var out []types.Symbol
	for _, c := range candidates {
		switch c.Kind() {
		case types.KindFunction, types.KindMethod, types.KindConstructor, types.KindCallback:
			out = append(out, c)
		}
	}
	return out
}

func isExported(sym types.Symbol) bool {
	switch t := sym.(type) {
	case types.FunctionSignature:
		return t.IsExported
	case types.ClassSignature:
		return t.IsExported
	case types.InterfaceSignature:
		return t.IsExported
	case types.VariableSignature:
		return t.IsExported
	case types.TypeAliasSignature:
		return t.IsExported
	case types.PropertySignature:
		return t.IsExported
	case types.ConfigEntrySignature:
		return t.IsExported
	}
	return false
}
