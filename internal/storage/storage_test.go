package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/codeindex/internal/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleFunction(id, name, filePath string, exported bool) types.FunctionSignature {
	return types.FunctionSignature{
		Base: types.Base{
			IDValue:    id,
			Name_:      name,
			Kind_:      types.KindFunction,
			Location:   types.Location{FilePath: filePath, StartLine: 1, EndLine: 5},
			IsExported: exported,
		},
	}
}

func TestSaveFileThenGetFile(t *testing.T) {
	store := openTestStore(t)

	rec := types.FileRecord{
		AbsolutePath: "/repo/a.go",
		RelativePath: "a.go",
		Language:     "go",
		Checksum:     "abc123",
		LineCount:    10,
		ParseStatus:  types.ParseComplete,
	}
	require.NoError(t, store.SaveFile(rec, &types.ParseResult{}))

	got, err := store.GetFile("a.go")
	require.NoError(t, err)
	assert.Equal(t, "/repo/a.go", got.AbsolutePath)
	assert.Equal(t, "go", got.Language)
}

func TestSaveFileIsReplacedNotDuplicated(t *testing.T) {
	store := openTestStore(t)

	result := &types.ParseResult{Functions: []types.FunctionSignature{sampleFunction("sym-1", "Foo", "/repo/a.go", true)}}
	rec := types.FileRecord{AbsolutePath: "/repo/a.go", RelativePath: "a.go", Language: "go", Checksum: "v1"}
	require.NoError(t, store.SaveFile(rec, result))

	// Reindex with a different checksum and no symbols; old rows must vanish.
	rec.Checksum = "v2"
	require.NoError(t, store.SaveFile(rec, &types.ParseResult{}))

	_, err := store.GetFunction("a.go", "Foo")
	assert.Error(t, err, "old symbol should have been deleted on reindex")

	got, err := store.GetFile("a.go")
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Checksum)
}

func TestRemoveFileDeletesAllChildRows(t *testing.T) {
	store := openTestStore(t)

	result := &types.ParseResult{
		Functions: []types.FunctionSignature{sampleFunction("sym-1", "Foo", "/repo/a.go", true)},
		CallEdges: []types.CallGraphEdge{{ID: "edge-1", CallerSymbolID: "sym-1", CalleeName: "Bar"}},
	}
	rec := types.FileRecord{AbsolutePath: "/repo/a.go", RelativePath: "a.go", Language: "go"}
	require.NoError(t, store.SaveFile(rec, result))

	require.NoError(t, store.RemoveFile("/repo/a.go"))

	_, err := store.GetFile("a.go")
	assert.Error(t, err)

	edges, err := store.GetCallees("sym-1")
	require.NoError(t, err)
	assert.Empty(t, edges)
}

func TestSearchSymbolsExactNameRanksFirst(t *testing.T) {
	store := openTestStore(t)

	result := &types.ParseResult{Functions: []types.FunctionSignature{
		sampleFunction("sym-1", "Get", "/repo/a.go", true),
		sampleFunction("sym-2", "GetUser", "/repo/b.go", true),
	}}
	require.NoError(t, store.SaveFile(types.FileRecord{AbsolutePath: "/repo/a.go", RelativePath: "a.go", Language: "go"}, &types.ParseResult{Functions: result.Functions[:1]}))
	require.NoError(t, store.SaveFile(types.FileRecord{AbsolutePath: "/repo/b.go", RelativePath: "b.go", Language: "go"}, &types.ParseResult{Functions: result.Functions[1:]}))

	found, err := store.SearchSymbols("Get", SearchSymbolsOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, found)
	assert.Equal(t, "Get", found[0].Name())
}

func TestUnresolvedCallEdgesAndResolution(t *testing.T) {
	store := openTestStore(t)

	result := &types.ParseResult{
		Functions: []types.FunctionSignature{sampleFunction("sym-1", "Caller", "/repo/a.go", true)},
		CallEdges: []types.CallGraphEdge{{ID: "edge-1", CallerSymbolID: "sym-1", CallerName: "Caller", CalleeName: "Callee"}},
	}
	require.NoError(t, store.SaveFile(types.FileRecord{AbsolutePath: "/repo/a.go", RelativePath: "a.go", Language: "go"}, result))

	unresolved, err := store.UnresolvedCallEdges()
	require.NoError(t, err)
	require.Len(t, unresolved, 1)

	require.NoError(t, store.SetCallEdgeCallee(unresolved[0].ID, "sym-callee"))

	stillUnresolved, err := store.UnresolvedCallEdges()
	require.NoError(t, err)
	assert.Empty(t, stillUnresolved)
}

func TestSymbolsByNameOrdersByFileThenLine(t *testing.T) {
	store := openTestStore(t)

	later := sampleFunction("sym-b", "Dup", "/repo/b.go", true)
	earlier := sampleFunction("sym-a", "Dup", "/repo/a.go", true)
	require.NoError(t, store.SaveFile(types.FileRecord{AbsolutePath: "/repo/a.go", RelativePath: "a.go", Language: "go"}, &types.ParseResult{Functions: []types.FunctionSignature{earlier}}))
	require.NoError(t, store.SaveFile(types.FileRecord{AbsolutePath: "/repo/b.go", RelativePath: "b.go", Language: "go"}, &types.ParseResult{Functions: []types.FunctionSignature{later}}))

	syms, err := store.SymbolsByName("Dup")
	require.NoError(t, err)
	require.Len(t, syms, 2)
	assert.Equal(t, "/repo/a.go", syms[0].Loc().FilePath)
	assert.Equal(t, "/repo/b.go", syms[1].Loc().FilePath)
}
