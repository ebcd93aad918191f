package query

import "github.com/standardbeagle/codeindex/internal/types"

// FindReferences implements find_references: every recorded occurrence of
// symbolName, optionally narrowed to one file.
func (a *API) FindReferences(symbolName, filePath string, limit int) ([]types.SymbolReference, error) {
	var refs []types.SymbolReference
	var err error
	if filePath != "" {
		resolved, rerr := a.resolvePath(nil, filePath)
		if rerr != nil {
			return nil, rerr
		}
		all, rerr := a.Store.GetReferencesInFile(resolved)
		if rerr != nil {
			return nil, rerr
		}
		for _, r := range all {
			if r.SymbolName == symbolName {
				refs = append(refs, r)
			}
		}
	} else {
		refs, err = a.Store.GetReferencesByName(symbolName)
		if err != nil {
			return nil, err
		}
	}
	if limit > 0 && len(refs) > limit {
		refs = refs[:limit]
	}
	return refs, nil
}
