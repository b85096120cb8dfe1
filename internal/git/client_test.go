package git

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// initTestRepo creates an on-disk repository with a single commit holding
// config.json, so clone tests run without network access.
func initTestRepo(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"),
		[]byte(`{"sites": [{"key": "a", "api": "https://a.example.com"}]}`), 0600))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("config.json")
	require.NoError(t, err)

	_, err = wt.Commit("add document", &gogit.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	return dir
}

func TestCloneAndReadFile(t *testing.T) {
	t.Parallel()

	dir := initTestRepo(t)
	client := NewDefaultGitClient()

	repoInfo, err := client.Clone(t.Context(), &CloneConfig{URL: dir})
	require.NoError(t, err)
	require.NotNil(t, repoInfo)
	assert.Equal(t, dir, repoInfo.RemoteURL)
	assert.NotEmpty(t, repoInfo.Branch)

	content, err := client.GetFileContent(repoInfo, "config.json")
	require.NoError(t, err)
	assert.Contains(t, string(content), `"sites"`)

	_, err = client.GetFileContent(repoInfo, "missing.json")
	assert.Error(t, err)

	require.NoError(t, client.Cleanup(t.Context(), repoInfo))
	assert.Nil(t, repoInfo.Repository)
}

func TestCloneInvalidURL(t *testing.T) {
	t.Parallel()

	client := NewDefaultGitClient()

	_, err := client.Clone(t.Context(), &CloneConfig{URL: filepath.Join(t.TempDir(), "not-a-repo")})
	assert.Error(t, err)
}

func TestCloneMissingBranch(t *testing.T) {
	t.Parallel()

	dir := initTestRepo(t)
	client := NewDefaultGitClient()

	_, err := client.Clone(t.Context(), &CloneConfig{URL: dir, Branch: "does-not-exist"})
	assert.Error(t, err)
}

func TestGetFileContentNilRepository(t *testing.T) {
	t.Parallel()

	client := NewDefaultGitClient()

	_, err := client.GetFileContent(nil, "config.json")
	assert.Error(t, err)

	_, err = client.GetFileContent(&RepositoryInfo{}, "config.json")
	assert.Error(t, err)
}

func TestCleanupNilRepository(t *testing.T) {
	t.Parallel()

	client := NewDefaultGitClient()
	assert.Error(t, client.Cleanup(t.Context(), nil))
	assert.Error(t, client.Cleanup(t.Context(), &RepositoryInfo{}))
}
