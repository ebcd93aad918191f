package query

import (
	"github.com/standardbeagle/codeindex/internal/storage"
	"github.com/standardbeagle/codeindex/internal/types"
)

// ListFilesArgs mirrors the list_files tool-surface entry.
type ListFilesArgs struct {
	Directory      string
	Language       string
	Limit          int
	Offset         int
	IncludeTests   bool
}

func (a *API) ListFiles(args ListFilesArgs) ([]types.FileRecord, error) {
	return a.Store.ListFiles(storage.ListFilesOptions{
		Directory:    args.Directory,
		Language:     args.Language,
		IncludeTests: args.IncludeTests,
		Limit:        args.Limit,
		Offset:       args.Offset,
	})
}

// FileSymbols is list_functions' result: one file's functions, classes and
// interfaces (the tool name is a holdover; it returns every top-level
// symbol kind in the file, not just functions).
type FileSymbols struct {
	FilePath string
	Symbols  []types.Symbol
}

func (a *API) ListFunctions(filePath string, includePrivate bool) (*FileSymbols, error) {
	resolved, err := a.resolvePath(nil, filePath)
	if err != nil {
		return nil, err
	}
	file, err := a.Store.GetFile(resolved)
	if err != nil {
		return nil, err
	}

	all, err := a.Store.SymbolsInFile(file.AbsolutePath)
	if err != nil {
		return nil, err
	}
	var out []types.Symbol
	for _, sym := range all {
		if !includePrivate && isPrivateSymbol(sym) {
			continue
		}
		out = append(out, sym)
	}
	return &FileSymbols{FilePath: file.AbsolutePath, Symbols: out}, nil
}

func isPrivateSymbol(sym types.Symbol) bool {
	switch t := sym.(type) {
	case types.FunctionSignature:
		return t.Modifiers.IsPrivate || !t.IsExported
	case types.ClassSignature:
		return !t.IsExported
	case types.InterfaceSignature:
		return !t.IsExported
	case types.VariableSignature:
		return !t.IsExported
	case types.TypeAliasSignature:
		return !t.IsExported
	}
	return false
}
