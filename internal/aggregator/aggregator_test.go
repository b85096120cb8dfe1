package aggregator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chanforge/chanforge/internal/document"
)

// goodSite builds an entry that clears the default quality cutoff
func goodSite(key, name string) document.SiteEntry {
	return document.SiteEntry{
		Key: key, Name: name, Type: 1,
		API: "https://" + key + ".example.com/api.php", Searchable: 1,
	}
}

func TestMergeFirstWinsCollisions(t *testing.T) {
	t.Parallel()

	docs := []SourceDocument{
		{Source: "secondary", PriorityRank: 1, Document: &document.Document{Sites: []document.SiteEntry{
			goodSite("both", "secondary copy"),
			goodSite("only_b", "b only"),
		}}},
		{Source: "primary", PriorityRank: 0, Document: &document.Document{Sites: []document.SiteEntry{
			goodSite("both", "primary copy"),
			goodSite("only_a", "a only"),
		}}},
	}

	res := New(Options{MinScore: 30}).Merge(docs)

	keys := make(map[string]string)
	for _, rs := range res.Rated {
		keys[rs.Site.Key] = rs.Source
	}
	assert.Equal(t, "primary", keys["both"], "lower priority rank wins the collision")
	assert.Len(t, res.Document.Sites, 3)

	require.Len(t, res.Collisions, 1)
	assert.Equal(t, Collision{SiteKey: "both", Winner: "primary", Loser: "secondary"}, res.Collisions[0])

	assert.Equal(t, 4, res.Stats.TotalSites)
	assert.Equal(t, 3, res.Stats.MergedSites)
	assert.Equal(t, 1, res.Stats.Collisions)
}

func TestMergeQualityCutoff(t *testing.T) {
	t.Parallel()

	docs := []SourceDocument{
		{Source: "s", Document: &document.Document{Sites: []document.SiteEntry{
			goodSite("good", "good"),
			{Key: "weak", Name: "weak", Type: 3, API: "./js/weak.js"}, // scores 10
		}}},
	}

	res := New(Options{MinScore: 30}).Merge(docs)
	require.Len(t, res.Document.Sites, 1)
	assert.Equal(t, "good", res.Document.Sites[0].Key)
	assert.Equal(t, 1, res.Stats.BelowCutoff)

	// Negative MinScore disables the cutoff
	res = New(Options{MinScore: -1}).Merge(docs)
	assert.Len(t, res.Document.Sites, 2)
	assert.Zero(t, res.Stats.BelowCutoff)
}

func TestMergeSiteCap(t *testing.T) {
	t.Parallel()

	sites := make([]document.SiteEntry, 5)
	for i, key := range []string{"a", "b", "c", "d", "e"} {
		sites[i] = goodSite(key, key)
	}
	docs := []SourceDocument{{Source: "s", Document: &document.Document{Sites: sites}}}

	res := New(Options{MinScore: 30, MaxSites: 3}).Merge(docs)
	assert.Len(t, res.Document.Sites, 3)
	assert.Equal(t, 2, res.Stats.Capped)
	assert.Len(t, res.Rated, 5, "rated list keeps capped entries for reports")
}

func TestMergeOrdering(t *testing.T) {
	t.Parallel()

	docs := []SourceDocument{
		{Source: "s", Document: &document.Document{Sites: []document.SiteEntry{
			{Key: "plain", Name: "plain", Type: 1, API: "https://p.example.com/api.php"},         // 70
			{Key: "quality", Name: "量子资源", Type: 1, API: "https://q.example.com", Searchable: 1}, // 110
		}}},
	}

	res := New(Options{MinScore: 0}).Merge(docs)

	// Output keeps first-seen order so successive builds diff minimally
	require.Len(t, res.Document.Sites, 2)
	assert.Equal(t, "plain", res.Document.Sites[0].Key)
	assert.Equal(t, "quality", res.Document.Sites[1].Key)

	// The rated report is ordered by score
	require.Len(t, res.Rated, 2)
	assert.Equal(t, "quality", res.Rated[0].Site.Key)
	assert.Equal(t, 110, res.Rated[0].Rating.Score)
	assert.Equal(t, "plain", res.Rated[1].Site.Key)
}

func TestMergeEmptyInput(t *testing.T) {
	t.Parallel()

	res := New(Options{MinScore: 30}).Merge(nil)

	require.NotNil(t, res.Document)
	assert.NotNil(t, res.Document.Sites)
	assert.Empty(t, res.Document.Sites)
	assert.NotNil(t, res.Document.Lives)
	require.Len(t, res.Document.Parses, 1, "fallback parser keeps the document playable")
}

func TestMergeParsersDedupByName(t *testing.T) {
	t.Parallel()

	docs := []SourceDocument{
		{Source: "a", PriorityRank: 0, Document: &document.Document{
			Sites:  []document.SiteEntry{goodSite("a1", "a1")},
			Parses: []document.Parser{{Name: "聚合", URL: "https://a.example.com/jx"}},
		}},
		{Source: "b", PriorityRank: 1, Document: &document.Document{
			Sites: []document.SiteEntry{goodSite("b1", "b1")},
			Parses: []document.Parser{
				{Name: "聚合", URL: "https://b.example.com/jx"},
				{Name: "轮询", URL: "https://b.example.com/lx"},
			},
		}},
	}

	res := New(Options{MinScore: 30}).Merge(docs)
	require.Len(t, res.Document.Parses, 2)
	assert.Equal(t, "https://a.example.com/jx", res.Document.Parses[0].URL, "first source keeps the name")
	assert.Equal(t, "轮询", res.Document.Parses[1].Name)
}

func TestMergeFallbackParser(t *testing.T) {
	t.Parallel()

	docs := []SourceDocument{
		{Source: "s", Document: &document.Document{Sites: []document.SiteEntry{goodSite("a", "a")}}},
	}

	res := New(Options{MinScore: 30}).Merge(docs)
	require.Len(t, res.Document.Parses, 1)
	assert.Equal(t, "默认", res.Document.Parses[0].Name)
}

func TestMergeLivesHTTPOnly(t *testing.T) {
	t.Parallel()

	docs := []SourceDocument{
		{Source: "s", Document: &document.Document{
			Sites: []document.SiteEntry{goodSite("a", "a")},
			Lives: []document.LiveEntry{
				{Name: "ok", URL: "https://live.example.com/tv.m3u"},
				{Name: "local", URL: "./lives/tv.txt"},
				{Name: "proxy", URL: "proxy://do=live"},
			},
		}},
	}

	res := New(Options{MinScore: 30}).Merge(docs)
	require.Len(t, res.Document.Lives, 1)
	assert.Equal(t, "ok", res.Document.Lives[0].Name)
}

func TestMergeGlobals(t *testing.T) {
	t.Parallel()

	docs := []SourceDocument{
		{Source: "first", PriorityRank: 0, Document: &document.Document{
			Sites: []document.SiteEntry{goodSite("a", "a")},
		}},
		{Source: "second", PriorityRank: 1, Document: &document.Document{
			Spider:    "./jar/spider.jar",
			Wallpaper: "https://example.com/wp.jpg",
			Sites:     []document.SiteEntry{goodSite("b", "b")},
		}},
	}

	res := New(Options{MinScore: 30}).Merge(docs)
	assert.Equal(t, "./jar/spider.jar", res.Document.Spider, "first non-empty spider wins")
	assert.Equal(t, "https://example.com/wp.jpg", res.Document.Wallpaper)
}

func TestMergeSkipsNilAndKeylessEntries(t *testing.T) {
	t.Parallel()

	docs := []SourceDocument{
		{Source: "nil_doc", Document: nil},
		{Source: "s", Document: &document.Document{Sites: []document.SiteEntry{
			{Key: "", Name: "keyless", Type: 1, API: "https://x.example.com"},
			goodSite("a", "a"),
		}}},
	}

	res := New(Options{MinScore: 30}).Merge(docs)
	require.Len(t, res.Document.Sites, 1)
	assert.Equal(t, "a", res.Document.Sites[0].Key)
}
