package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/codeindex/internal/storage"
	"github.com/standardbeagle/codeindex/internal/types"
)

func openTestStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func fn(id, name, filePath string, exported bool, startLine int) types.FunctionSignature {
	return types.FunctionSignature{
		Base: types.Base{
			IDValue:    id,
			Name_:      name,
			Kind_:      types.KindFunction,
			Location:   types.Location{FilePath: filePath, StartLine: startLine, EndLine: startLine + 4},
			IsExported: exported,
		},
	}
}

func TestRunResolvesUnambiguousCallEdge(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.SaveFile(types.FileRecord{AbsolutePath: "/repo/a.go", RelativePath: "a.go", Language: "go"},
		&types.ParseResult{
			Functions: []types.FunctionSignature{fn("caller", "Caller", "/repo/a.go", true, 1)},
			CallEdges: []types.CallGraphEdge{{ID: "edge-1", CallerSymbolID: "caller", CallerName: "Caller", CalleeName: "Callee"}},
		}))
	require.NoError(t, store.SaveFile(types.FileRecord{AbsolutePath: "/repo/b.go", RelativePath: "b.go", Language: "go"},
		&types.ParseResult{Functions: []types.FunctionSignature{fn("callee", "Callee", "/repo/b.go", true, 1)}}))

	sum, err := Run(store)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.CallEdgesResolved)
	assert.Equal(t, 0, sum.CallEdgesUnresolved)

	edges, err := store.GetCallees("caller")
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, "callee", edges[0].CalleeSymbolID)
}

func TestRunPrefersSameFileOverCrossFile(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.SaveFile(types.FileRecord{AbsolutePath: "/repo/a.go", RelativePath: "a.go", Language: "go"},
		&types.ParseResult{
			Functions: []types.FunctionSignature{
				fn("caller", "Caller", "/repo/a.go", true, 1),
				fn("local-target", "Target", "/repo/a.go", false, 10),
			},
			CallEdges: []types.CallGraphEdge{{ID: "edge-1", CallerSymbolID: "caller", CallerName: "Caller", CalleeName: "Target"}},
		}))
	require.NoError(t, store.SaveFile(types.FileRecord{AbsolutePath: "/repo/b.go", RelativePath: "b.go", Language: "go"},
		&types.ParseResult{Functions: []types.FunctionSignature{fn("remote-target", "Target", "/repo/b.go", true, 1)}}))

	sum, err := Run(store)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.CallEdgesResolved)

	edges, err := store.GetCallees("caller")
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, "local-target", edges[0].CalleeSymbolID, "same-file candidate should win over the exported cross-file one")
}

func TestRunPrefersExportedWhenCrossFile(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.SaveFile(types.FileRecord{AbsolutePath: "/repo/a.go", RelativePath: "a.go", Language: "go"},
		&types.ParseResult{
			Functions: []types.FunctionSignature{fn("caller", "Caller", "/repo/a.go", true, 1)},
			CallEdges: []types.CallGraphEdge{{ID: "edge-1", CallerSymbolID: "caller", CallerName: "Caller", CalleeName: "Target"}},
		}))
	require.NoError(t, store.SaveFile(types.FileRecord{AbsolutePath: "/repo/b.go", RelativePath: "b.go", Language: "go"},
		&types.ParseResult{Functions: []types.FunctionSignature{fn("private-target", "Target", "/repo/b.go", false, 1)}}))
	require.NoError(t, store.SaveFile(types.FileRecord{AbsolutePath: "/repo/c.go", RelativePath: "c.go", Language: "go"},
		&types.ParseResult{Functions: []types.FunctionSignature{fn("exported-target", "Target", "/repo/c.go", true, 1)}}))

	_, err := Run(store)
	require.NoError(t, err)

	edges, err := store.GetCallees("caller")
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, "exported-target", edges[0].CalleeSymbolID)
}

func TestRunFallsBackToFirstByFilePathAndLineOnPersistentAmbiguity(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.SaveFile(types.FileRecord{AbsolutePath: "/repo/a.go", RelativePath: "a.go", Language: "go"},
		&types.ParseResult{
			Functions: []types.FunctionSignature{fn("caller", "Caller", "/repo/a.go", true, 1)},
			CallEdges: []types.CallGraphEdge{{ID: "edge-1", CallerSymbolID: "caller", CallerName: "Caller", CalleeName: "Target"}},
		}))
	require.NoError(t, store.SaveFile(types.FileRecord{AbsolutePath: "/repo/z.go", RelativePath: "z.go", Language: "go"},
		&types.ParseResult{Functions: []types.FunctionSignature{fn("target-z", "Target", "/repo/z.go", true, 1)}}))
	require.NoError(t, store.SaveFile(types.FileRecord{AbsolutePath: "/repo/m.go", RelativePath: "m.go", Language: "go"},
		&types.ParseResult{Functions: []types.FunctionSignature{fn("target-m", "Target", "/repo/m.go", true, 1)}}))

	_, err := Run(store)
	require.NoError(t, err)

	edges, err := store.GetCallees("caller")
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, "target-m", edges[0].CalleeSymbolID, "should pick the alphabetically-first file path as the final tiebreak")
}

func TestRunLeavesUnresolvedWhenNoCandidate(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.SaveFile(types.FileRecord{AbsolutePath: "/repo/a.go", RelativePath: "a.go", Language: "go"},
		&types.ParseResult{
			Functions: []types.FunctionSignature{fn("caller", "Caller", "/repo/a.go", true, 1)},
			CallEdges: []types.CallGraphEdge{{ID: "edge-1", CallerSymbolID: "caller", CallerName: "Caller", CalleeName: "NowhereToBeFound"}},
		}))

	sum, err := Run(store)
	require.NoError(t, err)
	assert.Equal(t, 0, sum.CallEdgesResolved)
	assert.Equal(t, 1, sum.CallEdgesUnresolved)
}

func TestRunResolvesReferencesAndTypeRelationships(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.SaveFile(types.FileRecord{AbsolutePath: "/repo/a.go", RelativePath: "a.go", Language: "go"},
		&types.ParseResult{
			Functions: []types.FunctionSignature{fn("base-type", "Base", "/repo/a.go", true, 1)},
			References: []types.SymbolReference{{ID: "ref-1", SymbolName: "Base", ReferencingFile: "/repo/a.go", ReferenceKind: types.RefRead}},
		}))
	require.NoError(t, store.SaveFile(types.FileRecord{AbsolutePath: "/repo/b.go", RelativePath: "b.go", Language: "go"},
		&types.ParseResult{
			Functions:         []types.FunctionSignature{fn("derived", "Derived", "/repo/b.go", true, 1)},
			TypeRelationships: []types.TypeRelationship{{ID: "rel-1", SourceSymbolID: "derived", SourceName: "Derived", TargetName: "Base", RelationshipKind: types.RelExtends}},
		}))

	sum, err := Run(store)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.ReferencesResolved)
	assert.Equal(t, 1, sum.TypeRelsResolved)

	refs, err := store.GetReferencesByName("Base")
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "base-type", refs[0].SymbolID)

	rels, err := store.GetTypeHierarchyByName("Derived")
	require.NoError(t, err)
	require.Len(t, rels, 1)
	assert.Equal(t, "base-type", rels[0].TargetSymbolID)
}
