package sources

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"time"

	"github.com/chanforge/chanforge/internal/config"
	"github.com/chanforge/chanforge/internal/fetcher"
)

// httpSourceHandler handles documents fetched from HTTP endpoints
type httpSourceHandler struct {
	fetcher   fetcher.Fetcher
	validator DocumentDataValidator
}

// NewHTTPSourceHandler creates a new HTTP source handler
func NewHTTPSourceHandler(f fetcher.Fetcher) SourceHandler {
	return &httpSourceHandler{
		fetcher:   f,
		validator: NewDocumentDataValidator(),
	}
}

// Validate validates the HTTP source configuration
func (*httpSourceHandler) Validate(src *config.SourceConfig) error {
	if src == nil {
		return fmt.Errorf("source configuration cannot be nil")
	}

	if src.HTTP == nil {
		return fmt.Errorf("http configuration is required")
	}

	if src.HTTP.URL == "" {
		return fmt.Errorf("http URL cannot be empty")
	}

	return nil
}

// fetchDocumentData retrieves raw document data from the HTTP endpoint
func (h *httpSourceHandler) fetchDocumentData(ctx context.Context, src *config.SourceConfig) ([]byte, error) {
	if err := h.Validate(src); err != nil {
		return nil, fmt.Errorf("source validation failed: %w", err)
	}

	startTime := time.Now()
	data, err := h.fetcher.Fetch(ctx, src.HTTP.URL)
	if err != nil {
		slog.Error("Document fetch failed",
			"error", err,
			"url", src.HTTP.URL,
			"duration", time.Since(startTime).String())
		return nil, fmt.Errorf("failed to fetch document from %s: %w", src.HTTP.URL, err)
	}

	slog.Debug("Document fetch completed",
		"url", src.HTTP.URL,
		"bytes", len(data),
		"duration", time.Since(startTime).String())

	return data, nil
}

// FetchDocument retrieves the document from the HTTP endpoint
func (h *httpSourceHandler) FetchDocument(ctx context.Context, src *config.SourceConfig) (*FetchResult, error) {
	data, err := h.fetchDocumentData(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch document data: %w", err)
	}

	doc, err := h.validator.ValidateData(data)
	if err != nil {
		return nil, fmt.Errorf("document validation failed: %w", err)
	}

	hash := fmt.Sprintf("%x", sha256.Sum256(data))

	// Relative plugin references resolve against the document's own URL
	return NewFetchResult(doc, data, hash, src.HTTP.URL), nil
}

// CurrentHash returns the current hash of the source data after fetching the document
func (h *httpSourceHandler) CurrentHash(ctx context.Context, src *config.SourceConfig) (string, error) {
	data, err := h.fetchDocumentData(ctx, src)
	if err != nil {
		return "", fmt.Errorf("failed to fetch document data: %w", err)
	}

	hash := fmt.Sprintf("%x", sha256.Sum256(data))
	return hash, nil
}
