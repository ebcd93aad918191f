package markov

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/codeindex/internal/config"
	"github.com/standardbeagle/codeindex/internal/types"
)

func TestQueryWalksChainAndRanksByScore(t *testing.T) {
	store := openTestStore(t)
	cfg := config.Default(t.TempDir()).Markov

	require.NoError(t, store.SaveFile(types.FileRecord{AbsolutePath: "/repo/a.go", RelativePath: "a.go", Language: "go"},
		&types.ParseResult{
			CallEdges: []types.CallGraphEdge{
				{ID: "e1", CallerSymbolID: "caller", CallerName: "Caller", CalleeSymbolID: "sym-a", CalleeName: "A", CallCount: 3},
				{ID: "e2", CallerSymbolID: "caller", CallerName: "Caller", CalleeSymbolID: "sym-b", CalleeName: "B", CallCount: 2},
			},
		}))
	_, err := RebuildAll(store, cfg)
	require.NoError(t, err)

	result, err := Query(store, cfg, "sym-a", QueryOptions{ChainTypes: []types.ChainType{types.ChainCallFlow}})
	require.NoError(t, err)
	require.NotEmpty(t, result.Suggestions)
	assert.Equal(t, "sym-b", result.Suggestions[0].SymbolID)
	assert.False(t, result.Suggestions[0].Fallback)
}

func TestQueryFallsBackToCallGraphWhenNoChainSupport(t *testing.T) {
	store := openTestStore(t)
	cfg := config.Default(t.TempDir()).Markov

	require.NoError(t, store.SaveFile(types.FileRecord{AbsolutePath: "/repo/a.go", RelativePath: "a.go", Language: "go"},
		&types.ParseResult{
			CallEdges: []types.CallGraphEdge{
				{ID: "e1", CallerSymbolID: "caller", CallerName: "Caller", CalleeSymbolID: "sym-a", CalleeName: "A", CallCount: 1},
			},
		}))
	// Rebuild chains so they exist, but sym-a has fan-out 1 so call_flow has
	// no transitions from it; the walk should find nothing and fall back.
	_, err := RebuildAll(store, cfg)
	require.NoError(t, err)

	result, err := Query(store, cfg, "sym-a", QueryOptions{ChainTypes: []types.ChainType{types.ChainCallFlow}})
	require.NoError(t, err)
	require.NotEmpty(t, result.Suggestions)
	assert.True(t, result.Suggestions[0].Fallback)
	assert.Equal(t, "caller", result.Suggestions[0].SymbolID)
}

func TestQueryReturnsEmptyWhenNothingToSuggest(t *testing.T) {
	store := openTestStore(t)
	cfg := config.Default(t.TempDir()).Markov

	_, err := RebuildAll(store, cfg)
	require.NoError(t, err)

	result, err := Query(store, cfg, "ghost-symbol", QueryOptions{})
	require.NoError(t, err)
	assert.Empty(t, result.Suggestions)
}

func TestRedistributeWeightsSplitsEvenlyOnDegenerateConfig(t *testing.T) {
	active := []activeChain{{chainType: types.ChainCallFlow}, {chainType: types.ChainCooccurrence}}
	weights := redistributeWeights(map[string]float64{}, active)
	assert.InDelta(t, 0.5, weights[string(types.ChainCallFlow)], 0.0001)
	assert.InDelta(t, 0.5, weights[string(types.ChainCooccurrence)], 0.0001)
}

func TestFillDefaultsAppliesOnlyUnsetFields(t *testing.T) {
	opts := fillDefaults(QueryOptions{Depth: 3})
	assert.Equal(t, 3, opts.Depth)
	assert.Equal(t, DefaultQueryOptions().MaxResults, opts.MaxResults)
}
