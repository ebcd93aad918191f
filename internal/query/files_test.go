package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/codeindex/internal/types"
)

func TestListFilesFiltersByDirectoryAndLanguage(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.SaveFile(types.FileRecord{AbsolutePath: "/repo/src/a.go", RelativePath: "src/a.go", Language: "go"}, &types.ParseResult{}))
	require.NoError(t, store.SaveFile(types.FileRecord{AbsolutePath: "/repo/docs/b.md", RelativePath: "docs/b.md", Language: "markdown"}, &types.ParseResult{}))
	a := newTestAPI(t, store)

	files, err := a.ListFiles(ListFilesArgs{Directory: "src"})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "src/a.go", files[0].RelativePath)
}

func TestListFunctionsExcludesPrivateByDefault(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.SaveFile(types.FileRecord{AbsolutePath: "/repo/a.go", RelativePath: "a.go", Language: "go"},
		&types.ParseResult{Functions: []types.FunctionSignature{
			fn("f1", "Public", "/repo/a.go", true),
			fn("f2", "private", "/repo/a.go", false),
		}}))
	a := newTestAPI(t, store)

	res, err := a.ListFunctions("a.go", false)
	require.NoError(t, err)
	require.Len(t, res.Symbols, 1)
	assert.Equal(t, "Public", res.Symbols[0].Name())
}

func TestListFunctionsIncludesPrivateWhenRequested(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.SaveFile(types.FileRecord{AbsolutePath: "/repo/a.go", RelativePath: "a.go", Language: "go"},
		&types.ParseResult{Functions: []types.FunctionSignature{
			fn("f1", "Public", "/repo/a.go", true),
			fn("f2", "private", "/repo/a.go", false),
		}}))
	a := newTestAPI(t, store)

	res, err := a.ListFunctions("a.go", true)
	require.NoError(t, err)
	assert.Len(t, res.Symbols, 2)
}

func TestListFunctionsErrorsOnUnresolvedPath(t *testing.T) {
	store := openTestStore(t)
	a := newTestAPI(t, store)

	_, err := a.ListFunctions("nope.go", false)
	assert.Error(t, err)
}
