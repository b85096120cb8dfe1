package filtering

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chanforge/chanforge/internal/config"
	"github.com/chanforge/chanforge/internal/document"
)

func testDoc() *document.Document {
	return &document.Document{
		Spider: "./jar/spider.jar",
		Sites: []document.SiteEntry{
			{Key: "douban", Name: "豆瓣热搜", Type: 3, API: "./js/douban.js"},
			{Key: "cms_fast", Name: "快看资源", Type: 1, API: "https://fast.example.com/api.php"},
			{Key: "cms_slow", Name: "慢看资源", Type: 1, API: "https://slow.example.com/api.php"},
			{Key: "adsite", Name: "广告站", Type: 1, API: "https://ads.example.com/api.php"},
		},
		Parses: []document.Parser{{Name: "聚合", Type: 3}},
	}
}

func TestApplyFilters(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		filter   *config.FilterConfig
		wantKeys []string
	}{
		{
			name:     "nil_filter_returns_all",
			filter:   nil,
			wantKeys: []string{"douban", "cms_fast", "cms_slow", "adsite"},
		},
		{
			name:     "include_by_key_glob",
			filter:   &config.FilterConfig{Names: &config.NameFilterConfig{Include: []string{"cms_*"}}},
			wantKeys: []string{"cms_fast", "cms_slow"},
		},
		{
			name:     "include_by_display_name",
			filter:   &config.FilterConfig{Names: &config.NameFilterConfig{Include: []string{"*资源"}}},
			wantKeys: []string{"cms_fast", "cms_slow"},
		},
		{
			name:     "exclude_only",
			filter:   &config.FilterConfig{Names: &config.NameFilterConfig{Exclude: []string{"adsite"}}},
			wantKeys: []string{"douban", "cms_fast", "cms_slow"},
		},
		{
			name: "exclude_wins_over_include",
			filter: &config.FilterConfig{Names: &config.NameFilterConfig{
				Include: []string{"cms_*"},
				Exclude: []string{"*slow*"},
			}},
			wantKeys: []string{"cms_fast"},
		},
		{
			name: "exclude_by_name_beats_include_by_key",
			filter: &config.FilterConfig{Names: &config.NameFilterConfig{
				Include: []string{"adsite"},
				Exclude: []string{"广告*"},
			}},
			wantKeys: []string{},
		},
		{
			name:     "include_matches_nothing",
			filter:   &config.FilterConfig{Names: &config.NameFilterConfig{Include: []string{"nonexistent"}}},
			wantKeys: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := NewDefaultFilterService()
			doc := testDoc()
			filtered, err := svc.ApplyFilters(t.Context(), doc, tt.filter)
			require.NoError(t, err)

			keys := make([]string, 0, len(filtered.Sites))
			for _, s := range filtered.Sites {
				keys = append(keys, s.Key)
			}
			assert.Equal(t, tt.wantKeys, keys)

			// Non-site sections ride along untouched
			assert.Equal(t, doc.Spider, filtered.Spider)
			assert.Equal(t, doc.Parses, filtered.Parses)
		})
	}
}

func TestApplyFiltersDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	svc := NewDefaultFilterService()
	doc := testDoc()
	original := len(doc.Sites)

	filtered, err := svc.ApplyFilters(t.Context(), doc,
		&config.FilterConfig{Names: &config.NameFilterConfig{Exclude: []string{"*"}}})
	require.NoError(t, err)

	assert.Empty(t, filtered.Sites)
	assert.Len(t, doc.Sites, original)
}

func TestApplyFiltersNilDocument(t *testing.T) {
	t.Parallel()

	_, err := NewDefaultFilterService().ApplyFilters(t.Context(), nil, nil)
	assert.Error(t, err)
}
