package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/codeindex/internal/types"
)

func TestGetRelatedContextBundlesTypesAndCallees(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.SaveFile(types.FileRecord{AbsolutePath: "/repo/a.go", RelativePath: "a.go", Language: "go"},
		&types.ParseResult{
			Functions: []types.FunctionSignature{fn("f1", "Handler", "/repo/a.go", true)},
			TypeRelationships: []types.TypeRelationship{
				{ID: "r1", SourceSymbolID: "f1", SourceName: "Handler", TargetSymbolID: "base", TargetName: "Base", RelationshipKind: types.RelExtends},
			},
			CallEdges: []types.CallGraphEdge{
				{ID: "e1", CallerSymbolID: "f1", CallerName: "Handler", CalleeSymbolID: "f2", CalleeName: "Validate", CallCount: 1},
			},
		}))
	a := newTestAPI(t, store)

	ctx, err := a.GetRelatedContext("Handler", "", true, true, true, 1, 4000)
	require.NoError(t, err)
	require.NotNil(t, ctx.Symbol)
	assert.Equal(t, "Handler", ctx.Symbol.Name())
	require.Len(t, ctx.Types, 1)
	assert.Equal(t, "Base", ctx.Types[0].TargetName)
	require.Len(t, ctx.Callees, 1)
	assert.Equal(t, "Validate", ctx.Callees[0].CalleeName)
}

func TestGetRelatedContextExcludesTestReferencesByDefault(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.SaveFile(types.FileRecord{AbsolutePath: "/repo/a.go", RelativePath: "a.go", Language: "go"},
		&types.ParseResult{
			Functions: []types.FunctionSignature{fn("f1", "Handler", "/repo/a.go", true)},
			References: []types.SymbolReference{
				{ID: "r1", SymbolName: "Handler", ReferencingFile: "/repo/a_test.go", Line: 1, ReferenceKind: types.RefCall, Context: "Handler()"},
				{ID: "r2", SymbolName: "Handler", ReferencingFile: "/repo/caller.go", Line: 1, ReferenceKind: types.RefCall, Context: "Handler()"},
			},
		}))
	a := newTestAPI(t, store)

	ctx, err := a.GetRelatedContext("Handler", "", false, false, false, 1, 4000)
	require.NoError(t, err)
	require.Len(t, ctx.References, 1)
	assert.Equal(t, "/repo/caller.go", ctx.References[0].ReferencingFile)
}

func TestGetRelatedContextMarksTruncatedWhenTokenBudgetExhausted(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.SaveFile(types.FileRecord{AbsolutePath: "/repo/a.go", RelativePath: "a.go", Language: "go"},
		&types.ParseResult{
			Functions: []types.FunctionSignature{fn("f1", "Handler", "/repo/a.go", true)},
			TypeRelationships: []types.TypeRelationship{
				{ID: "r1", SourceSymbolID: "f1", SourceName: "Handler", TargetSymbolID: "base", TargetName: "SomeVeryLongBaseTypeName", RelationshipKind: types.RelExtends},
				{ID: "r2", SourceSymbolID: "f1", SourceName: "Handler", TargetSymbolID: "base2", TargetName: "AnotherVeryLongBaseTypeName", RelationshipKind: types.RelExtends},
			},
		}))
	a := newTestAPI(t, store)

	ctx, err := a.GetRelatedContext("Handler", "", true, false, false, 1, 10)
	require.NoError(t, err)
	assert.True(t, ctx.Truncated)
}

func TestGetRelatedContextErrorsWhenSymbolNotFound(t *testing.T) {
	store := openTestStore(t)
	a := newTestAPI(t, store)

	_, err := a.GetRelatedContext("Ghost", "", false, false, false, 1, 4000)
	assert.Error(t, err)
}
