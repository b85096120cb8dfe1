package sources

import (
	"context"
	"fmt"

	"github.com/chanforge/chanforge/internal/config"
	"github.com/chanforge/chanforge/internal/document"
)

// DocumentDataValidator is an interface for validating raw document data
type DocumentDataValidator interface {
	// ValidateData validates raw data and returns a parsed Document
	ValidateData(data []byte) (*document.Document, error)
}

// SourceHandler is an interface with methods to fetch documents from
// external data sources
type SourceHandler interface {
	// FetchDocument retrieves the document from the source and returns the result
	FetchDocument(ctx context.Context, src *config.SourceConfig) (*FetchResult, error)

	// Validate validates the source configuration
	Validate(src *config.SourceConfig) error

	// CurrentHash returns the current hash of the source data without performing a full parse
	CurrentHash(ctx context.Context, src *config.SourceConfig) (string, error)
}

// FetchResult contains the result of a fetch operation
type FetchResult struct {
	// Document is the parsed channel configuration document
	Document *document.Document

	// Raw is the serialized document as fetched
	Raw []byte

	// Hash is the SHA256 hash of the serialized data for change detection
	Hash string

	// BaseURL is the URL relative plugin references resolve against.
	// Empty for file and git sources, whose documents must use absolute references.
	BaseURL string

	// SiteCount is the number of site entries found in the document
	SiteCount int
}

// NewFetchResult creates a new FetchResult from a parsed document and pre-calculated hash.
// The hash should be calculated by the source handler to ensure consistency with CurrentHash.
func NewFetchResult(doc *document.Document, raw []byte, hash string, baseURL string) *FetchResult {
	siteCount := 0
	if doc != nil {
		siteCount = len(doc.Sites)
	}

	return &FetchResult{
		Document:  doc,
		Raw:       raw,
		Hash:      hash,
		BaseURL:   baseURL,
		SiteCount: siteCount,
	}
}

// SourceHandlerFactory creates source handlers based on source type
type SourceHandlerFactory interface {
	// CreateHandler creates a source handler for the given source type
	CreateHandler(sourceType string) (SourceHandler, error)
}

// DefaultDocumentDataValidator is the default implementation of DocumentDataValidator
type DefaultDocumentDataValidator struct{}

// NewDocumentDataValidator creates a new default document validator
func NewDocumentDataValidator() DocumentDataValidator {
	return &DefaultDocumentDataValidator{}
}

// ValidateData validates raw data and returns a parsed Document
func (*DefaultDocumentDataValidator) ValidateData(data []byte) (*document.Document, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("data cannot be empty")
	}

	doc, err := document.Parse(data)
	if err != nil {
		return nil, err
	}

	return doc, nil
}
