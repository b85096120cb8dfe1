package filtering

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/chanforge/chanforge/internal/config"
	"github.com/chanforge/chanforge/internal/document"
)

// FilterService applies site filters to channel configuration documents
type FilterService interface {
	// ApplyFilters filters the document's site entries based on filter configuration
	ApplyFilters(
		ctx context.Context,
		doc *document.Document,
		filter *config.FilterConfig,
	) (*document.Document, error)
}

// defaultFilterService implements filtering using name filters
type defaultFilterService struct {
	nameFilter NameFilter
}

var _ FilterService = (*defaultFilterService)(nil)

// NewDefaultFilterService creates a new defaultFilterService with the default name filter
func NewDefaultFilterService() FilterService {
	return &defaultFilterService{
		nameFilter: NewDefaultNameFilter(),
	}
}

// NewFilterService creates a new defaultFilterService with a custom name filter
func NewFilterService(nameFilter NameFilter) FilterService {
	return &defaultFilterService{
		nameFilter: nameFilter,
	}
}

// ApplyFilters filters the document's site entries based on filter configuration
//
// The filtering process:
// 1. If no filter is specified, return the original document unchanged
// 2. Create a shallow copy of the document with an empty site list
// 3. Keep each site whose key or display name passes the name filter
// 4. Return the filtered document; the input is never mutated
func (s *defaultFilterService) ApplyFilters(
	_ context.Context,
	doc *document.Document,
	filter *config.FilterConfig,
) (*document.Document, error) {
	if doc == nil {
		return nil, fmt.Errorf("document cannot be nil")
	}

	if filter == nil || filter.Names == nil {
		slog.Debug("No filter configuration specified, returning original document")
		return doc, nil
	}

	include := filter.Names.Include
	exclude := filter.Names.Exclude

	filtered := *doc
	filtered.Sites = make([]document.SiteEntry, 0, len(doc.Sites))

	excludedCount := 0
	for i := range doc.Sites {
		site := &doc.Sites[i]
		keep, reason := s.shouldIncludeSiteWithReason(site, include, exclude)
		if keep {
			filtered.Sites = append(filtered.Sites, *site)
			continue
		}
		excludedCount++
		slog.Debug("Site excluded by filter",
			"site", site.Key,
			"name", site.Name,
			"reason", reason)
	}

	slog.Info("Document filtering completed",
		"includedSites", len(filtered.Sites),
		"excludedSites", excludedCount)

	return &filtered, nil
}

// shouldIncludeSiteWithReason determines if a site should be included and
// provides detailed reasoning. Patterns are matched against both the entry
// key and the display name.
func (s *defaultFilterService) shouldIncludeSiteWithReason(
	site *document.SiteEntry,
	include, exclude []string,
) (bool, string) {
	return s.nameFilter.ShouldInclude([]string{site.Key, site.Name}, include, exclude)
}
