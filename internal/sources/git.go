package sources

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"time"

	"github.com/chanforge/chanforge/internal/config"
	git2 "github.com/chanforge/chanforge/internal/git"
)

const (
	// DefaultDocumentFile is the default file name for the document in Git sources
	DefaultDocumentFile = "config.json"
)

// gitSourceHandler handles documents stored in Git repositories
type gitSourceHandler struct {
	gitClient git2.Client
	validator DocumentDataValidator
}

// NewGitSourceHandler creates a new Git source handler
func NewGitSourceHandler() SourceHandler {
	return &gitSourceHandler{
		gitClient: git2.NewDefaultGitClient(),
		validator: NewDocumentDataValidator(),
	}
}

// Validate validates the Git source configuration
func (*gitSourceHandler) Validate(src *config.SourceConfig) error {
	if src == nil {
		return fmt.Errorf("source configuration cannot be nil")
	}

	if src.Git == nil {
		return fmt.Errorf("git configuration is required")
	}

	gitSource := src.Git

	if gitSource.Repository == "" {
		return fmt.Errorf("git repository URL cannot be empty")
	}

	// Validate mutually exclusive branch/tag/commit
	specified := 0
	if gitSource.Branch != "" {
		specified++
	}
	if gitSource.Tag != "" {
		specified++
	}
	if gitSource.Commit != "" {
		specified++
	}

	if specified > 1 {
		return fmt.Errorf("only one of branch, tag, or commit may be specified")
	}

	return nil
}

// fetchDocumentData retrieves raw document data from the Git repository
func (h *gitSourceHandler) fetchDocumentData(ctx context.Context, src *config.SourceConfig) ([]byte, error) {
	if err := h.Validate(src); err != nil {
		return nil, fmt.Errorf("source validation failed: %w", err)
	}

	gitSource := src.Git
	cloneConfig := &git2.CloneConfig{
		URL:    gitSource.Repository,
		Branch: gitSource.Branch,
		Tag:    gitSource.Tag,
		Commit: gitSource.Commit,
	}

	startTime := time.Now()
	slog.Info("Starting git clone",
		"repository", cloneConfig.URL,
		"branch", cloneConfig.Branch,
		"tag", cloneConfig.Tag,
		"commit", cloneConfig.Commit)

	repoInfo, err := h.gitClient.Clone(ctx, cloneConfig)
	cloneDuration := time.Since(startTime)

	if err != nil {
		slog.Error("Git clone failed",
			"error", err,
			"repository", cloneConfig.URL,
			"duration", cloneDuration.String())
		return nil, fmt.Errorf("failed to clone repository: %w", err)
	}

	cloneAttrs := []any{
		"repository", cloneConfig.URL,
		"duration", cloneDuration.String(),
		"branch", repoInfo.Branch,
	}
	if repoInfo.Repository != nil {
		if ref, err := repoInfo.Repository.Head(); err == nil {
			cloneAttrs = append(cloneAttrs, "commit_sha", ref.Hash().String())
		}
	}
	slog.Info("Git clone completed", cloneAttrs...)

	// Ensure cleanup
	defer func() {
		if cleanupErr := h.gitClient.Cleanup(ctx, repoInfo); cleanupErr != nil {
			// Log error but don't fail the operation
			slog.Error("Failed to cleanup repository", "error", cleanupErr)
		}
	}()

	filePath := gitSource.Path
	if filePath == "" {
		filePath = DefaultDocumentFile
	}

	data, err := h.gitClient.GetFileContent(repoInfo, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to get file %s from repository: %w", filePath, err)
	}

	return data, nil
}

// FetchDocument retrieves the document from the Git repository
func (h *gitSourceHandler) FetchDocument(ctx context.Context, src *config.SourceConfig) (*FetchResult, error) {
	data, err := h.fetchDocumentData(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch document data: %w", err)
	}

	// Validate and parse document data
	doc, err := h.validator.ValidateData(data)
	if err != nil {
		return nil, fmt.Errorf("document validation failed: %w", err)
	}

	hash := fmt.Sprintf("%x", sha256.Sum256(data))

	// Git documents must use absolute plugin references, so no base URL
	return NewFetchResult(doc, data, hash, ""), nil
}

// CurrentHash returns the current hash of the source data after fetching the document
func (h *gitSourceHandler) CurrentHash(ctx context.Context, src *config.SourceConfig) (string, error) {
	data, err := h.fetchDocumentData(ctx, src)
	if err != nil {
		return "", fmt.Errorf("failed to fetch document data: %w", err)
	}

	hash := fmt.Sprintf("%x", sha256.Sum256(data))
	return hash, nil
}
