package sources

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chanforge/chanforge/internal/config"
)

const validDocumentJSON = `{
	"spider": "./jar/spider.jar",
	"sites": [
		{"key": "cms1", "name": "资源一", "type": 1, "api": "https://a.example.com/api.php"},
		{"key": "sp1", "name": "站点一", "type": 3, "api": "./js/sp1.js"}
	],
	"parses": [{"name": "聚合", "type": 3, "url": ""}]
}`

func writeDocumentFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestFileFetchDocument(t *testing.T) {
	t.Parallel()

	path := writeDocumentFile(t, validDocumentJSON)
	src := &config.SourceConfig{Name: "local", File: &config.FileConfig{Path: path}}

	handler := NewFileSourceHandler()
	result, err := handler.FetchDocument(t.Context(), src)
	require.NoError(t, err)

	assert.Equal(t, 2, result.SiteCount)
	assert.Equal(t, "./jar/spider.jar", result.Document.Spider)
	assert.Empty(t, result.BaseURL, "file sources have no base URL")
	assert.NotEmpty(t, result.Hash)
	assert.JSONEq(t, validDocumentJSON, string(result.Raw))
}

func TestFileFetchDocumentErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		src  *config.SourceConfig
	}{
		{"nil_source", nil},
		{"missing_file_config", &config.SourceConfig{Name: "x"}},
		{"empty_path", &config.SourceConfig{Name: "x", File: &config.FileConfig{}}},
		{"nonexistent_file", &config.SourceConfig{Name: "x", File: &config.FileConfig{Path: "/nonexistent/config.json"}}},
	}

	handler := NewFileSourceHandler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := handler.FetchDocument(t.Context(), tt.src)
			assert.Error(t, err)
		})
	}
}

func TestFileFetchDocumentInvalidContent(t *testing.T) {
	t.Parallel()

	path := writeDocumentFile(t, `{"parses": []}`)
	src := &config.SourceConfig{Name: "bad", File: &config.FileConfig{Path: path}}

	_, err := NewFileSourceHandler().FetchDocument(t.Context(), src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation")
}

func TestFileCurrentHash(t *testing.T) {
	t.Parallel()

	path := writeDocumentFile(t, validDocumentJSON)
	src := &config.SourceConfig{Name: "local", File: &config.FileConfig{Path: path}}

	handler := NewFileSourceHandler()
	hash1, err := handler.CurrentHash(t.Context(), src)
	require.NoError(t, err)

	result, err := handler.FetchDocument(t.Context(), src)
	require.NoError(t, err)
	assert.Equal(t, hash1, result.Hash, "CurrentHash matches the fetch hash for unchanged data")

	// Hash changes when the file changes
	require.NoError(t, os.WriteFile(path, []byte(`{"sites": [{"key": "other", "api": "https://x.example.com"}]}`), 0600))
	hash2, err := handler.CurrentHash(t.Context(), src)
	require.NoError(t, err)
	assert.NotEqual(t, hash1, hash2)
}
