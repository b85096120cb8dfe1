// Package aggregator merges validated channel configuration documents from
// multiple sources into one document. Sources are ranked by configuration
// order; the highest-priority document wins every key collision, and every
// collision is recorded so reports can explain what was dropped.
package aggregator

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/chanforge/chanforge/internal/document"
)

// SourceDocument is one source's validated document, tagged with its merge priority
type SourceDocument struct {
	// Source is the configured source name
	Source string

	// PriorityRank is the source's position in configuration order; lower wins
	PriorityRank int

	// Document is the validated document contents
	Document *document.Document
}

// Collision records a site key claimed by more than one source
type Collision struct {
	// SiteKey is the colliding entry key
	SiteKey string `json:"site_key"`

	// Winner is the source whose entry was kept
	Winner string `json:"winner"`

	// Loser is the source whose entry was dropped
	Loser string `json:"loser"`
}

// RatedSite pairs a merged entry with its quality rating, for reports
type RatedSite struct {
	Site   document.SiteEntry `json:"site"`
	Source string             `json:"source"`
	Rating Rating             `json:"rating"`
}

// Stats summarizes what the merge did
type Stats struct {
	// TotalSites counts entries across all input documents
	TotalSites int `json:"total_sites"`

	// MergedSites counts entries in the output document
	MergedSites int `json:"merged_sites"`

	// Collisions counts dropped duplicate keys
	Collisions int `json:"collisions"`

	// BelowCutoff counts entries dropped for scoring under the quality cutoff
	BelowCutoff int `json:"below_cutoff"`

	// Capped counts entries dropped by the site cap after scoring
	Capped int `json:"capped"`

	// Parsers counts parser entries in the output document
	Parsers int `json:"parsers"`

	// Lives counts live channel entries in the output document
	Lives int `json:"lives"`
}

// Result is the merge outcome
type Result struct {
	// Document is the merged document
	Document *document.Document

	// Collisions records every dropped duplicate key
	Collisions []Collision

	// Rated holds the rating of every entry that survived deduplication,
	// sorted by score descending, including entries later cut by score or cap
	Rated []RatedSite

	// Stats summarizes the merge
	Stats Stats
}

// Options configures an Aggregator
type Options struct {
	// MinScore is the quality cutoff; entries scoring under it are dropped.
	// Negative disables the cutoff.
	MinScore int

	// MaxSites caps the merged site list; 0 means no cap
	MaxSites int

	// IncludeCloud keeps cloud-drive entries that are otherwise penalized out
	IncludeCloud bool
}

// Aggregator merges documents by source priority
type Aggregator struct {
	opts Options
}

// New creates an aggregator
func New(opts Options) *Aggregator {
	return &Aggregator{opts: opts}
}

// fallbackParser keeps merged documents playable when no source contributes
// a parser of its own
var fallbackParser = document.Parser{
	Name: "默认",
	Type: 0,
	URL:  "https://jx.xmflv.com/?url=",
}

// Merge combines the given documents into one. Inputs are processed in
// (priority rank, original index) order, so the output is deterministic for
// a given input set regardless of how the documents were fetched.
func (a *Aggregator) Merge(docs []SourceDocument) *Result {
	ordered := make([]SourceDocument, len(docs))
	copy(ordered, docs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].PriorityRank < ordered[j].PriorityRank
	})

	res := &Result{}

	merged := a.mergeSites(ordered, res)
	rated := a.rateAndCut(merged, res)

	out := &document.Document{
		Sites:  rated,
		Parses: mergeParsers(ordered),
		Lives:  mergeLives(ordered),
	}
	out.Spider, out.Wallpaper = pickGlobals(ordered)

	if len(out.Parses) == 0 {
		out.Parses = []document.Parser{fallbackParser}
	}

	res.Document = out
	res.Stats.MergedSites = len(out.Sites)
	res.Stats.Collisions = len(res.Collisions)
	res.Stats.Parsers = len(out.Parses)
	res.Stats.Lives = len(out.Lives)

	slog.Info("Documents merged",
		"sources", len(docs),
		"total_sites", res.Stats.TotalSites,
		"merged_sites", res.Stats.MergedSites,
		"collisions", res.Stats.Collisions,
		"below_cutoff", res.Stats.BelowCutoff,
		"capped", res.Stats.Capped)

	return res
}

// mergeSites deduplicates site entries by key, first claim wins
func (*Aggregator) mergeSites(ordered []SourceDocument, res *Result) []RatedSite {
	claimed := make(map[string]string)
	var merged []RatedSite

	for _, sd := range ordered {
		if sd.Document == nil {
			continue
		}
		res.Stats.TotalSites += len(sd.Document.Sites)

		for _, site := range sd.Document.Sites {
			if site.Key == "" {
				continue
			}
			if winner, taken := claimed[site.Key]; taken {
				res.Collisions = append(res.Collisions, Collision{
					SiteKey: site.Key,
					Winner:  winner,
					Loser:   sd.Source,
				})
				continue
			}
			claimed[site.Key] = sd.Source
			merged = append(merged, RatedSite{Site: site, Source: sd.Source})
		}
	}

	return merged
}

// rateAndCut scores the deduplicated entries and applies the quality cutoff
// and the site cap. Scores pick which entries survive; the survivors come
// back in (priority rank, original index) order so successive builds diff
// minimally.
func (a *Aggregator) rateAndCut(merged []RatedSite, res *Result) []document.SiteEntry {
	for i := range merged {
		merged[i].Rating = RateSite(&merged[i].Site, a.opts.IncludeCloud)
	}

	ranked := make([]RatedSite, len(merged))
	copy(ranked, merged)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Rating.Score > ranked[j].Rating.Score
	})
	res.Rated = ranked

	keep := make(map[string]struct{})
	for _, rs := range ranked {
		if a.opts.MinScore >= 0 && rs.Rating.Score < a.opts.MinScore {
			res.Stats.BelowCutoff++
			continue
		}
		if a.opts.MaxSites > 0 && len(keep) >= a.opts.MaxSites {
			res.Stats.Capped++
			continue
		}
		keep[rs.Site.Key] = struct{}{}
	}

	kept := make([]document.SiteEntry, 0, len(keep))
	for _, rs := range merged {
		if _, ok := keep[rs.Site.Key]; ok {
			kept = append(kept, rs.Site)
		}
	}
	return kept
}

// mergeParsers deduplicates parser entries by name, first claim wins
func mergeParsers(ordered []SourceDocument) []document.Parser {
	seen := make(map[string]struct{})
	var parsers []document.Parser

	for _, sd := range ordered {
		if sd.Document == nil {
			continue
		}
		for _, p := range sd.Document.Parses {
			if p.Name == "" {
				continue
			}
			if _, dup := seen[p.Name]; dup {
				continue
			}
			seen[p.Name] = struct{}{}
			parsers = append(parsers, p)
		}
	}

	return parsers
}

// mergeLives concatenates live channel entries, keeping only fetchable URLs
func mergeLives(ordered []SourceDocument) []document.LiveEntry {
	lives := make([]document.LiveEntry, 0)

	for _, sd := range ordered {
		if sd.Document == nil {
			continue
		}
		for _, l := range sd.Document.Lives {
			if !strings.HasPrefix(l.URL, "http") {
				continue
			}
			lives = append(lives, l)
		}
	}

	return lives
}

// pickGlobals takes the highest-priority non-empty spider and wallpaper
func pickGlobals(ordered []SourceDocument) (spider, wallpaper string) {
	for _, sd := range ordered {
		if sd.Document == nil {
			continue
		}
		if spider == "" && sd.Document.Spider != "" {
			spider = sd.Document.Spider
		}
		if wallpaper == "" && sd.Document.Wallpaper != "" {
			wallpaper = sd.Document.Wallpaper
		}
	}
	return spider, wallpaper
}
