package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/codeindex/internal/types"
)

func TestTraceCallsWalksCalleesToRequestedDepth(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.SaveFile(types.FileRecord{AbsolutePath: "/repo/a.go", RelativePath: "a.go", Language: "go"},
		&types.ParseResult{CallEdges: []types.CallGraphEdge{
			{ID: "e1", CallerSymbolID: "s1", CallerName: "Main", CalleeSymbolID: "s2", CalleeName: "Helper", CallCount: 1},
			{ID: "e2", CallerSymbolID: "s2", CallerName: "Helper", CalleeSymbolID: "s3", CalleeName: "Inner", CallCount: 1},
		}}))
	a := newTestAPI(t, store)

	levels, err := a.TraceCalls("Main", "callees", 2)
	require.NoError(t, err)
	require.Len(t, levels, 2)
	assert.Equal(t, "Helper", levels[0].Edges[0].CalleeName)
	assert.Equal(t, "Inner", levels[1].Edges[0].CalleeName)
}

func TestTraceCallsClampsDepthToThree(t *testing.T) {
	store := openTestStore(t)
	a := newTestAPI(t, store)

	levels, err := a.TraceCalls("Anything", "callees", 99)
	require.NoError(t, err)
	assert.Empty(t, levels, "no call edges exist so the walk finds nothing regardless of depth")

	require.NoError(t, store.SaveFile(types.FileRecord{AbsolutePath: "/repo/chain.go", RelativePath: "chain.go", Language: "go"},
		&types.ParseResult{CallEdges: []types.CallGraphEdge{
			{ID: "c1", CallerSymbolID: "a", CallerName: "A", CalleeSymbolID: "b", CalleeName: "B", CallCount: 1},
			{ID: "c2", CallerSymbolID: "b", CallerName: "B", CalleeSymbolID: "c", CalleeName: "C", CallCount: 1},
			{ID: "c3", CallerSymbolID: "c", CallerName: "C", CalleeSymbolID: "d", CalleeName: "D", CallCount: 1},
			{ID: "c4", CallerSymbolID: "d", CallerName: "D", CalleeSymbolID: "e", CalleeName: "E", CallCount: 1},
		}}))
	levels, err = a.TraceCalls("A", "callees", 99)
	require.NoError(t, err)
	assert.Len(t, levels, 3, "a four-edge chain is cut off after three levels")
}

func TestTraceCallsBothDirections(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.SaveFile(types.FileRecord{AbsolutePath: "/repo/a.go", RelativePath: "a.go", Language: "go"},
		&types.ParseResult{CallEdges: []types.CallGraphEdge{
			{ID: "e1", CallerSymbolID: "s1", CallerName: "Caller", CalleeSymbolID: "s2", CalleeName: "Target", CallCount: 1},
		}}))
	a := newTestAPI(t, store)

	levels, err := a.TraceCalls("Target", "both", 1)
	require.NoError(t, err)
	require.Len(t, levels, 1)
	assert.Equal(t, "Caller", levels[0].Edges[0].CallerName)
}
