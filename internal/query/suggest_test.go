package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/codeindex/internal/types"
)

func TestSuggestRelatedFallsBackToCallGraphWithoutBuiltChains(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.SaveFile(types.FileRecord{AbsolutePath: "/repo/a.go", RelativePath: "a.go", Language: "go"},
		&types.ParseResult{
			Functions: []types.FunctionSignature{fn("f1", "Handler", "/repo/a.go", true)},
			CallEdges: []types.CallGraphEdge{
				{ID: "e1", CallerSymbolID: "f1", CallerName: "Handler", CalleeSymbolID: "f2", CalleeName: "Validate", CallCount: 1},
			},
		}))
	a := newTestAPI(t, store)

	result, err := a.SuggestRelated("Handler", "", nil, 0, 0, 0, false)
	require.NoError(t, err)
	require.NotEmpty(t, result.Suggestions)
	assert.True(t, result.Suggestions[0].Fallback)
	assert.Equal(t, "Validate", result.Suggestions[0].SymbolName)
}

func TestSuggestRelatedErrorsWhenSymbolNotFound(t *testing.T) {
	store := openTestStore(t)
	a := newTestAPI(t, store)

	_, err := a.SuggestRelated("Ghost", "", nil, 0, 0, 0, false)
	assert.Error(t, err)
}

func TestSuggestRelatedScopesResolutionToFile(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.SaveFile(types.FileRecord{AbsolutePath: "/repo/a.go", RelativePath: "a.go", Language: "go"},
		&types.ParseResult{Functions: []types.FunctionSignature{fn("f1", "Handler", "/repo/a.go", true)}}))
	require.NoError(t, store.SaveFile(types.FileRecord{AbsolutePath: "/repo/b.go", RelativePath: "b.go", Language: "go"},
		&types.ParseResult{Functions: []types.FunctionSignature{fn("f2", "Handler", "/repo/b.go", true)}}))
	a := newTestAPI(t, store)

	result, err := a.SuggestRelated("Handler", "b.go", nil, 0, 0, 0, false)
	require.NoError(t, err)
	assert.Equal(t, "Handler", result.StartSymbol)
}
