// Package premium composes the enhanced client profile: the merged site
// list wrapped with ad filtering, DNS-over-HTTPS servers, player tuning,
// play rules, and a curated parser set.
package premium

import (
	"github.com/chanforge/chanforge/internal/document"
)

// DoHServer is one DNS-over-HTTPS resolver offered to the client
type DoHServer struct {
	Name string   `json:"name"`
	URL  string   `json:"url"`
	IPs  []string `json:"ips"`
}

// IJKOption is one ijkplayer tuning knob
type IJKOption struct {
	Category int    `json:"category"`
	Name     string `json:"name"`
	Value    string `json:"value"`
}

// IJKGroup is one named set of player options the client can switch between
type IJKGroup struct {
	Group   string      `json:"group"`
	Options []IJKOption `json:"options"`
}

// PlayRule is one playback filter rule. Named rules strip ad segments from
// specific hosts; wildcard rules sniff direct media URLs on any host.
type PlayRule struct {
	Name  string   `json:"name,omitempty"`
	Hosts []string `json:"hosts,omitempty"`
	Regex []string `json:"regex,omitempty"`
	Host  string   `json:"host,omitempty"`
	Rule  []string `json:"rule,omitempty"`
}

// Document is a channel configuration document extended with the premium
// client sections
type Document struct {
	document.Document

	DoH   []DoHServer `json:"doh"`
	Ads   []string    `json:"ads"`
	IJK   []IJKGroup  `json:"ijk"`
	Rules []PlayRule  `json:"rules"`
	Flags []string    `json:"flags"`
}

// premiumWallpaper replaces whatever wallpaper the merged sources carried
const premiumWallpaper = "https://picsum.photos/1280/720/?blur=2"

// doubanHotSite is pinned to the top of every premium site list
var doubanHotSite = document.SiteEntry{
	Key:         "豆瓣热搜",
	Name:        "🔥 豆瓣热搜",
	Type:        document.SiteTypeSpider,
	API:         "./js/douban_hot.js",
	Searchable:  1,
	QuickSearch: 1,
}

// Compose builds the premium document around a merged base document. The
// base document's parsers are replaced by the curated premium set; its sites
// are kept with the Douban hot-search entry pinned first, and its lives pass
// through unchanged.
func Compose(base *document.Document) *Document {
	sites := make([]document.SiteEntry, 0, len(base.Sites)+1)
	sites = append(sites, doubanHotSite)
	sites = append(sites, base.Sites...)

	lives := base.Lives
	if lives == nil {
		lives = []document.LiveEntry{}
	}

	return &Document{
		Document: document.Document{
			Spider:    base.Spider,
			Wallpaper: premiumWallpaper,
			Sites:     sites,
			Parses:    Parsers(),
			Lives:     lives,
		},
		DoH:   DoHServers(),
		Ads:   AdFilters(),
		IJK:   IJKGroups(),
		Rules: PlayRules(),
		Flags: Flags(),
	}
}
