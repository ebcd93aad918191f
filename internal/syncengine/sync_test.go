package syncengine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/codeindex/internal/config"
	"github.com/standardbeagle/codeindex/internal/indexer"
	"github.com/standardbeagle/codeindex/internal/storage"
)

const pkgJSON = `{"name": "demo", "version": "1.0.0"}`

func newTestEngine(t *testing.T) (*Engine, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default(dir)
	cfg.RespectGitignore = false

	store, err := storage.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	idx, err := indexer.New(cfg, store)
	require.NoError(t, err)

	return New(idx, dir, cfg), dir
}

func TestSyncFullWalkReindexesNewFiles(t *testing.T) {
	eng, dir := newTestEngine(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(pkgJSON), 0o644))

	summary, err := eng.Sync(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Reindexed)
	assert.Equal(t, 0, summary.Removed)
	assert.Empty(t, summary.Errors)
}

func TestSyncFullWalkSecondPassReportsUnchanged(t *testing.T) {
	eng, dir := newTestEngine(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(pkgJSON), 0o644))

	_, err := eng.Sync(context.Background(), Request{})
	require.NoError(t, err)

	summary, err := eng.Sync(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Reindexed)
	assert.Equal(t, 1, summary.Unchanged)
}

func TestSyncTargetedFilesAcceptsRelativePaths(t *testing.T) {
	eng, dir := newTestEngine(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(pkgJSON), 0o644))

	summary, err := eng.Sync(context.Background(), Request{Files: []string{"package.json"}})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Reindexed)
	assert.Empty(t, summary.Errors)
}

func TestSyncTargetedFilesRecordsErrorsWithoutAbortingWholeBatch(t *testing.T) {
	eng, dir := newTestEngine(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(pkgJSON), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "not-a-file.json"), 0o755))

	summary, err := eng.Sync(context.Background(), Request{Files: []string{"package.json", "not-a-file.json"}})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Reindexed)
	assert.Len(t, summary.Errors, 1)
}

func TestSyncTargetedFileDeletionReportsRemoved(t *testing.T) {
	eng, dir := newTestEngine(t)
	pkgPath := filepath.Join(dir, "package.json")
	require.NoError(t, os.WriteFile(pkgPath, []byte(pkgJSON), 0o644))

	_, err := eng.Sync(context.Background(), Request{Files: []string{"package.json"}})
	require.NoError(t, err)

	require.NoError(t, os.Remove(pkgPath))

	summary, err := eng.Sync(context.Background(), Request{Files: []string{"package.json"}})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Removed)
	assert.Equal(t, 0, summary.Reindexed)
	assert.Empty(t, summary.Errors)
}

func TestSyncWithRebuildChainsPopulatesChainIDs(t *testing.T) {
	eng, dir := newTestEngine(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(pkgJSON), 0o644))

	summary, err := eng.Sync(context.Background(), Request{RebuildChains: true})
	require.NoError(t, err)
	assert.NotEmpty(t, summary.ChainIDs)
}

func TestSyncSerializesConcurrentCalls(t *testing.T) {
	eng, dir := newTestEngine(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(pkgJSON), 0o644))

	done := make(chan error, 2)
	go func() {
		_, err := eng.Sync(context.Background(), Request{})
		done <- err
	}()
	go func() {
		_, err := eng.Sync(context.Background(), Request{})
		done <- err
	}()

	require.NoError(t, <-done)
	require.NoError(t, <-done)
}
