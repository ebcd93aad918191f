package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testBinaryPath string

func TestMain(m *testing.M) {
	tempBinary := filepath.Join(os.TempDir(), "codeindex-test-"+fmt.Sprintf("%d", time.Now().UnixNano()))

	buildCmd := exec.Command("go", "build", "-o", tempBinary, ".")
	var buildOut bytes.Buffer
	buildCmd.Stdout = &buildOut
	buildCmd.Stderr = &buildOut

	if err := buildCmd.Run(); err != nil {
		fmt.Printf("failed to build CLI for testing: %v\nbuild output: %s\n", err, buildOut.String())
		os.Exit(1)
	}

	testBinaryPath = tempBinary
	code := m.Run()
	os.Remove(testBinaryPath)
	os.Exit(code)
}

func setupTestProject(t *testing.T) string {
	dir := t.TempDir()
	files := map[string]string{
		"src/main.ts": `export function main() {
  return loadConfig();
}

export function loadConfig() {
  return {};
}
`,
		"package.json": `{"name": "fixture-project", "scripts": {"build": "tsc"}}`,
	}
	for path, content := range files {
		full := filepath.Join(dir, path)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	return dir
}

func runCLICommand(args ...string) (string, error) {
	if testBinaryPath == "" {
		return "", fmt.Errorf("test binary not built")
	}
	cmd := exec.Command(testBinaryPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String() + stderr.String(), err
}

func TestIndexCommandReportsSummary(t *testing.T) {
	root := setupTestProject(t)

	output, err := runCLICommand("index", "--root", root)
	require.NoError(t, err)

	var summary map[string]any
	require.NoError(t, json.Unmarshal([]byte(output), &summary))
	assert.EqualValues(t, 2, summary["Reindexed"])
	assert.Empty(t, summary["Errors"])
}

func TestIndexCommandIsIdempotentOnSecondRun(t *testing.T) {
	root := setupTestProject(t)

	_, err := runCLICommand("index", "--root", root)
	require.NoError(t, err)

	output, err := runCLICommand("index", "--root", root)
	require.NoError(t, err)

	var summary map[string]any
	require.NoError(t, json.Unmarshal([]byte(output), &summary))
	assert.EqualValues(t, 0, summary["Reindexed"])
	assert.EqualValues(t, 2, summary["Unchanged"])
}

func TestSyncCommandAcceptsTargetedFile(t *testing.T) {
	root := setupTestProject(t)

	_, err := runCLICommand("index", "--root", root)
	require.NoError(t, err)

	output, err := runCLICommand("sync", "--root", root, "package.json")
	require.NoError(t, err)

	var summary map[string]any
	require.NoError(t, json.Unmarshal([]byte(output), &summary))
	assert.EqualValues(t, 0, summary["Reindexed"])
	assert.EqualValues(t, 1, summary["Unchanged"])
}

func TestRebuildChainsCommandReportsChainIDs(t *testing.T) {
	root := setupTestProject(t)

	_, err := runCLICommand("index", "--root", root)
	require.NoError(t, err)

	output, err := runCLICommand("rebuild-chains", "--root", root)
	require.NoError(t, err)

	var result map[string]any
	require.NoError(t, json.Unmarshal([]byte(output), &result))
	ids, ok := result["chainIds"].([]any)
	require.True(t, ok)
	assert.NotEmpty(t, ids)
}

func TestIndexCommandCreatesDatabaseUnderProjectDotDir(t *testing.T) {
	root := setupTestProject(t)

	_, err := runCLICommand("index", "--root", root)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(root, ".codeindex", "index.db"))
	assert.NoError(t, err)
}

func TestIndexCommandFailsGracefullyOnUnknownFlag(t *testing.T) {
	_, err := runCLICommand("index", "--not-a-real-flag")
	assert.Error(t, err)
}
