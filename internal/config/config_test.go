package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultFillsInBaselineTunables(t *testing.T) {
	dir := t.TempDir()
	cfg := Default(dir)

	assert.Equal(t, filepath.Join(cfg.RootDirectory, ".codeindex", "index.db"), cfg.DatabasePath)
	assert.True(t, cfg.RespectGitignore)
	assert.False(t, cfg.IncludePrivate)
	assert.Equal(t, int64(1<<20), cfg.MaxFileSize)
	assert.ElementsMatch(t, DefaultExclusions(), cfg.Exclude)
	assert.InDelta(t, 1.0, cfg.Markov.ChainWeights["call_flow"]+cfg.Markov.ChainWeights["cooccurrence"]+
		cfg.Markov.ChainWeights["type_affinity"]+cfg.Markov.ChainWeights["import_cluster"], 0.0001)
}

func TestLoadWithoutConfigFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, Default(dir).Exclude, cfg.Exclude)
}

func TestLoadAppliesKDLOverrides(t *testing.T) {
	dir := t.TempDir()
	kdlContent := `
index {
    max_file_size 2048
    include_private true
    respect_gitignore false
    watch_debounce_ms 500
}

include "**/*.ts" "**/*.tsx"
exclude "**/fixtures/**"

markov {
    call_flow_async_bonus 0.25
    import_cluster_min_shared 3
}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".codeindex.kdl"), []byte(kdlContent), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, int64(2048), cfg.MaxFileSize)
	assert.True(t, cfg.IncludePrivate)
	assert.False(t, cfg.RespectGitignore)
	assert.Equal(t, 500, cfg.WatchDebounceMs)
	assert.Equal(t, []string{"**/*.ts", "**/*.tsx"}, cfg.Include)
	assert.Contains(t, cfg.Exclude, "**/fixtures/**")
	assert.InDelta(t, 0.25, cfg.Markov.CallFlow.AsyncBonus, 0.0001)
	assert.Equal(t, 3, cfg.Markov.ImportCluster.MinSharedImports)
}

func TestLoadIgnoresUnknownNodes(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".codeindex.kdl"), []byte(`totally_unknown_section { foo "bar" }`), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, Default(dir).MaxFileSize, cfg.MaxFileSize)
}
