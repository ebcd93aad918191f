package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/codeindex/internal/types"
)

func TestFindReferencesAcrossAllFiles(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.SaveFile(types.FileRecord{AbsolutePath: "/repo/a.go", RelativePath: "a.go", Language: "go"},
		&types.ParseResult{References: []types.SymbolReference{
			{ID: "r1", SymbolName: "Widget", ReferencingFile: "/repo/a.go", Line: 5, ReferenceKind: types.RefRead},
		}}))
	require.NoError(t, store.SaveFile(types.FileRecord{AbsolutePath: "/repo/b.go", RelativePath: "b.go", Language: "go"},
		&types.ParseResult{References: []types.SymbolReference{
			{ID: "r2", SymbolName: "Widget", ReferencingFile: "/repo/b.go", Line: 9, ReferenceKind: types.RefRead},
		}}))
	a := newTestAPI(t, store)

	refs, err := a.FindReferences("Widget", "", 0)
	require.NoError(t, err)
	assert.Len(t, refs, 2)
}

func TestFindReferencesScopedToFile(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.SaveFile(types.FileRecord{AbsolutePath: "/repo/a.go", RelativePath: "a.go", Language: "go"},
		&types.ParseResult{References: []types.SymbolReference{
			{ID: "r1", SymbolName: "Widget", ReferencingFile: "/repo/a.go", Line: 5, ReferenceKind: types.RefRead},
			{ID: "r2", SymbolName: "Other", ReferencingFile: "/repo/a.go", Line: 6, ReferenceKind: types.RefRead},
		}}))
	a := newTestAPI(t, store)

	refs, err := a.FindReferences("Widget", "a.go", 0)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "Widget", refs[0].SymbolName)
}

func TestFindReferencesRespectsLimit(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.SaveFile(types.FileRecord{AbsolutePath: "/repo/a.go", RelativePath: "a.go", Language: "go"},
		&types.ParseResult{References: []types.SymbolReference{
			{ID: "r1", SymbolName: "Widget", ReferencingFile: "/repo/a.go", Line: 1, ReferenceKind: types.RefRead},
			{ID: "r2", SymbolName: "Widget", ReferencingFile: "/repo/a.go", Line: 2, ReferenceKind: types.RefRead},
			{ID: "r3", SymbolName: "Widget", ReferencingFile: "/repo/a.go", Line: 3, ReferenceKind: types.RefRead},
		}}))
	a := newTestAPI(t, store)

	refs, err := a.FindReferences("Widget", "", 2)
	require.NoError(t, err)
	assert.Len(t, refs, 2)
}
