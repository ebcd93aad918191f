package query

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/codeindex/internal/config"
	"github.com/standardbeagle/codeindex/internal/pathresolve"
	"github.com/standardbeagle/codeindex/internal/storage"
	"github.com/standardbeagle/codeindex/internal/syncengine"
	"github.com/standardbeagle/codeindex/internal/types"
)

func openTestStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func newTestAPI(t *testing.T, store *storage.Store) *API {
	t.Helper()
	cfg := config.Default("/repo")
	resolver := pathresolve.New(cfg.RootDirectory, store)
	return New(store, resolver, cfg, nil)
}

func fn(id, name, filePath string, exported bool) types.FunctionSignature {
	return types.FunctionSignature{
		Base: types.Base{
			IDValue: id, Name_: name, Kind_: types.KindFunction,
			Location:   types.Location{FilePath: filePath, StartLine: 1, EndLine: 3},
			IsExported: exported,
		},
		Modifiers: types.Modifiers{IsExported: exported},
	}
}
