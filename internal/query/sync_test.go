package query

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/codeindex/internal/config"
	"github.com/standardbeagle/codeindex/internal/indexer"
	"github.com/standardbeagle/codeindex/internal/pathresolve"
	"github.com/standardbeagle/codeindex/internal/storage"
	"github.com/standardbeagle/codeindex/internal/syncengine"
)

func TestSyncIndexForwardsToSyncEngine(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default(dir)
	cfg.RespectGitignore = false

	store, err := storage.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	idx, err := indexer.New(cfg, store)
	require.NoError(t, err)
	eng := syncengine.New(idx, dir, cfg)
	resolver := pathresolve.New(cfg.RootDirectory, store)
	a := New(store, resolver, cfg, eng)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(`{"name":"demo"}`), 0o644))

	summary, err := a.SyncIndex(context.Background(), nil, false)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Reindexed)
}
