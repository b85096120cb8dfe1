package aggregator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chanforge/chanforge/internal/document"
)

func TestRateSite(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name         string
		site         document.SiteEntry
		allowCloud   bool
		wantScore    int
		wantCategory string
	}{
		{
			name:         "searchable_online_cms",
			site:         document.SiteEntry{Name: "快看资源", Type: 1, API: "https://fast.example.com/api.php", Searchable: 1, QuickSearch: 1},
			wantScore:    50 + 10 + 10 + 20,
			wantCategory: CategoryAPI,
		},
		{
			name:         "quality_provider_bonus",
			site:         document.SiteEntry{Name: "量子资源", Type: 1, API: "https://cj.lziapi.com/api.php", Searchable: 1},
			wantScore:    50 + 30 + 10 + 20,
			wantCategory: CategoryAPI,
		},
		{
			name:         "csp_plugin",
			site:         document.SiteEntry{Name: "某站", Type: 3, API: "csp_Douban"},
			wantScore:    20,
			wantCategory: CategoryCSP,
		},
		{
			name:         "js_plugin",
			site:         document.SiteEntry{Name: "某站", Type: 3, API: "./js/site.js"},
			wantScore:    10,
			wantCategory: CategoryJS,
		},
		{
			name:         "python_plugin",
			site:         document.SiteEntry{Name: "某站", Type: 3, API: "./py/site.py"},
			wantScore:    10,
			wantCategory: CategoryPython,
		},
		{
			name:         "cloud_keyword_penalized",
			site:         document.SiteEntry{Name: "阿里云盘", Type: 3, API: "csp_AliDrive", Searchable: 1},
			wantScore:    -100 + 20 + 10,
			wantCategory: CategoryCSP,
		},
		{
			name:         "cloud_api_pattern_penalized",
			site:         document.SiteEntry{Name: "玩玩", Type: 3, API: "csp_QuarkShare"},
			wantScore:    -100 + 20,
			wantCategory: CategoryCSP,
		},
		{
			name:         "cloud_allowed",
			site:         document.SiteEntry{Name: "阿里云盘", Type: 3, API: "csp_AliShare", Searchable: 1},
			allowCloud:   true,
			wantScore:    20 + 10,
			wantCategory: CategoryCSP,
		},
		{
			name:         "no_mechanism",
			site:         document.SiteEntry{Name: "neutral", Type: 3, API: ""},
			wantScore:    0,
			wantCategory: CategoryUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := RateSite(&tt.site, tt.allowCloud)
			assert.Equal(t, tt.wantScore, r.Score, "reasons: %v", r.Reasons)
			assert.Equal(t, tt.wantCategory, r.Category)
		})
	}
}

func TestRateSitePenalizesOnlyOnce(t *testing.T) {
	t.Parallel()

	// Name matches a keyword and api matches a pattern; the penalty applies once
	site := document.SiteEntry{Name: "夸克网盘", Type: 3, API: "csp_QuarkShare"}
	r := RateSite(&site, false)
	assert.Equal(t, -100+20, r.Score)
}
