package markov

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/codeindex/internal/config"
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

func TestRebuildAllCreatesAllFourChains(t *testing.T) {
	store := openTestStore(t)
	cfg := config.Default(t.TempDir()).Markov

	ids, err := RebuildAll(store, cfg)
	require.NoError(t, err)
	assert.Len(t, ids, 4)

	for _, ct := range types.AllChainTypes {
		_, err := store.GetChainID(ct)
		assert.NoError(t, err, "chain %s should have been created even with an empty store", ct)
	}
}

func TestBuildCallFlowRequiresFanoutOfAtLeastTwo(t *testing.T) {
	store := openTestStore(t)
	cfg := config.Default(t.TempDir()).Markov

	require.NoError(t, store.SaveFile(types.FileRecord{AbsolutePath: "/repo/a.go", RelativePath: "a.go", Language: "go"},
		&types.ParseResult{
			CallEdges: []types.CallGraphEdge{
				{ID: "e1", CallerSymbolID: "caller", CallerName: "Caller", CalleeSymbolID: "only-callee", CalleeName: "Only", CallCount: 1},
			},
		}))

	_, transitions, err := buildCallFlow(store, cfg)
	require.NoError(t, err)
	assert.Empty(t, transitions, "a single-callee caller has no co-callee pairs to relate")
}

func TestBuildCallFlowRelatesCoCallees(t *testing.T) {
	store := openTestStore(t)
	cfg := config.Default(t.TempDir()).Markov

	require.NoError(t, store.SaveFile(types.FileRecord{AbsolutePath: "/repo/a.go", RelativePath: "a.go", Language: "go"},
		&types.ParseResult{
			CallEdges: []types.CallGraphEdge{
				{ID: "e1", CallerSymbolID: "caller", CallerName: "Caller", CalleeSymbolID: "sym-a", CalleeName: "A", CallCount: 3},
				{ID: "e2", CallerSymbolID: "caller", CallerName: "Caller", CalleeSymbolID: "sym-b", CalleeName: "B", CallCount: 2},
			},
		}))

	_, transitions, err := buildCallFlow(store, cfg)
	require.NoError(t, err)
	require.Len(t, transitions, 2, "each callee gets one outgoing edge to the other")

	for _, tr := range transitions {
		assert.InDelta(t, 1.0, tr.Probability, 0.0001, "a row with one outgoing edge normalizes to probability 1")
	}
}

func TestBuildTypeAffinityAddsWeakerReverseEdge(t *testing.T) {
	store := openTestStore(t)
	cfg := config.Default(t.TempDir()).Markov

	require.NoError(t, store.SaveFile(types.FileRecord{AbsolutePath: "/repo/a.go", RelativePath: "a.go", Language: "go"},
		&types.ParseResult{
			TypeRelationships: []types.TypeRelationship{
				{ID: "r1", SourceSymbolID: "derived", SourceName: "Derived", TargetSymbolID: "base", TargetName: "Base", RelationshipKind: types.RelExtends},
			},
		}))

	_, transitions, err := buildTypeAffinity(store, cfg)
	require.NoError(t, err)
	require.Len(t, transitions, 2)

	var forward, reverse *types.MarkovTransition
	for i := range transitions {
		if transitions[i].FromStateID == "derived" {
			forward = &transitions[i]
		} else {
			reverse = &transitions[i]
		}
	}
	require.NotNil(t, forward)
	require.NotNil(t, reverse)
	assert.Equal(t, "base", forward.ToStateID)
	assert.Equal(t, "derived", reverse.ToStateID)
}

func TestBuildImportClusterRequiresMinSharedImports(t *testing.T) {
	store := openTestStore(t)
	cfg := config.Default(t.TempDir()).Markov
	cfg.ImportCluster.MinSharedImports = 2

	require.NoError(t, store.SaveFile(types.FileRecord{AbsolutePath: "/repo/a.go", RelativePath: "a.go", Language: "go"},
		&types.ParseResult{Imports: []types.ImportInfo{{Source: "shared-lib"}}}))
	require.NoError(t, store.SaveFile(types.FileRecord{AbsolutePath: "/repo/b.go", RelativePath: "b.go", Language: "go"},
		&types.ParseResult{Imports: []types.ImportInfo{{Source: "shared-lib"}}}))

	_, transitions, err := buildImportCluster(store, cfg)
	require.NoError(t, err)
	assert.Empty(t, transitions, "only one shared import source, below the configured minimum of 2")
}

func TestChainBuilderNormalizeSkipsSelfLoopsAndZeroSumRows(t *testing.T) {
	b := newChainBuilder()
	b.add("x", "X", "x", "X", 5.0) // self-loop, dropped
	out := b.normalize()
	assert.Empty(t, out)

	b2 := newChainBuilder()
	b2.add("a", "A", "b", "B", 3.0)
	b2.add("a", "A", "c", "C", 1.0)
	out2 := b2.normalize()
	require.Len(t, out2, 2)
	var sum float64
	for _, tr := range out2 {
		sum += tr.Probability
	}
	assert.InDelta(t, 1.0, sum, 0.0001)
}
