package premium

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chanforge/chanforge/internal/document"
)

func TestCompose(t *testing.T) {
	t.Parallel()

	base := &document.Document{
		Spider:    "./jar/spider.jar",
		Wallpaper: "https://example.com/wp.jpg",
		Sites: []document.SiteEntry{
			{Key: "cms1", Name: "资源一", Type: 1, API: "https://a.example.com/api.php"},
			{Key: "cms2", Name: "资源二", Type: 1, API: "https://b.example.com/api.php"},
		},
		Parses: []document.Parser{{Name: "来自合并", URL: "https://merged.example.com/jx"}},
		Lives:  []document.LiveEntry{{Name: "tv", URL: "https://live.example.com/tv.m3u"}},
	}

	doc := Compose(base)

	// Douban hot search is pinned first, merged sites follow in order
	require.Len(t, doc.Sites, 3)
	assert.Equal(t, "豆瓣热搜", doc.Sites[0].Key)
	assert.Equal(t, "cms1", doc.Sites[1].Key)
	assert.Equal(t, "cms2", doc.Sites[2].Key)

	assert.Equal(t, "./jar/spider.jar", doc.Spider)
	assert.Equal(t, premiumWallpaper, doc.Wallpaper, "merged wallpaper is replaced")

	// Merged parsers are replaced with the curated set
	assert.Equal(t, Parsers(), doc.Parses)
	for _, p := range doc.Parses {
		assert.NotEqual(t, "来自合并", p.Name)
	}

	assert.Equal(t, base.Lives, doc.Lives, "lives pass through unchanged")

	assert.NotEmpty(t, doc.Ads)
	assert.NotEmpty(t, doc.DoH)
	assert.NotEmpty(t, doc.IJK)
	assert.NotEmpty(t, doc.Rules)
	assert.NotEmpty(t, doc.Flags)
}

func TestComposeEmptyBase(t *testing.T) {
	t.Parallel()

	doc := Compose(&document.Document{})
	require.Len(t, doc.Sites, 1)
	assert.Equal(t, "豆瓣热搜", doc.Sites[0].Key)
	assert.NotNil(t, doc.Lives)
	assert.Empty(t, doc.Lives)
}

func TestComposeSerialization(t *testing.T) {
	t.Parallel()

	doc := Compose(&document.Document{})
	data, err := json.Marshal(doc)
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &decoded))

	// Premium sections live at the top level next to the base fields
	for _, key := range []string{"sites", "parses", "lives", "doh", "ads", "ijk", "rules", "flags"} {
		assert.Contains(t, decoded, key)
	}
}

func TestConstantAccessorsReturnCopies(t *testing.T) {
	t.Parallel()

	ads := AdFilters()
	require.NotEmpty(t, ads)
	ads[0] = "mutated"
	assert.NotEqual(t, "mutated", AdFilters()[0])

	doh := DoHServers()
	require.NotEmpty(t, doh)
	doh[0].Name = "mutated"
	assert.NotEqual(t, "mutated", DoHServers()[0].Name)

	parsers := Parsers()
	require.NotEmpty(t, parsers)
	parsers[0].Name = "mutated"
	assert.NotEqual(t, "mutated", Parsers()[0].Name)
}

func TestIJKGroups(t *testing.T) {
	t.Parallel()

	groups := IJKGroups()
	require.Len(t, groups, 2)

	names := []string{groups[0].Group, groups[1].Group}
	assert.Contains(t, names, "软解码")
	assert.Contains(t, names, "硬解码")
	for _, g := range groups {
		assert.NotEmpty(t, g.Options)
	}
}

func TestPlayRulesShape(t *testing.T) {
	t.Parallel()

	for _, r := range PlayRules() {
		if r.Host == "*" {
			assert.NotEmpty(t, r.Rule, "wildcard sniff rules carry rule fragments")
			continue
		}
		assert.NotEmpty(t, r.Name)
		assert.NotEmpty(t, r.Hosts)
	}
}
