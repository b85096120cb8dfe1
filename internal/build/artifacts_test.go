package build

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSONArtifact(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "dir", "report.json")
	require.NoError(t, writeJSONArtifact(path, map[string]int{"sites": 3}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
	assert.Equal(t, byte('\n'), data[len(data)-1])

	// No temp file left behind
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestWriteJSONArtifactOverwrites(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, writeJSONArtifact(path, map[string]string{"v": "first"}))
	require.NoError(t, writeJSONArtifact(path, map[string]string{"v": "second"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "second")
}

func TestValidationReportPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		filepath.Join("out", "reports", "validation_primary.json"),
		validationReportPath("out", "primary"))
}

func TestClean(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "build_output")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, MergedDir), 0750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, MergedDir, MergedDocumentFile), []byte("{}"), 0600))

	require.NoError(t, Clean(dir))
	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err))

	// Cleaning again is not an error
	assert.NoError(t, Clean(dir))
}
