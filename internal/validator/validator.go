package validator

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"

	"github.com/chanforge/chanforge/internal/depscan"
	"github.com/chanforge/chanforge/internal/document"
	"github.com/chanforge/chanforge/internal/fetcher"
)

// DefaultMaxWorkers bounds concurrent probes within one document
const DefaultMaxWorkers = 10

// searchProbeKeyword is the query sent by the search probe. Any common word
// works; the probe only checks response shape, not result quality.
const searchProbeKeyword = "test"

// Result is the probe outcome for one site entry
type Result struct {
	// SiteKey is the entry's unique key within its document
	SiteKey string `json:"site_key"`

	// Name is the entry's display name
	Name string `json:"name"`

	// Kind is the classified plugin kind
	Kind document.SiteKind `json:"kind"`

	// Reachable means the entry's endpoint or plugin body could be fetched
	Reachable bool `json:"reachable"`

	// Functional means the endpoint responded with a recognizable payload.
	// Always false when Reachable is false.
	Functional bool `json:"functional"`

	// LatencyMS is the probe round-trip time in milliseconds
	LatencyMS int64 `json:"latency_ms"`

	// Error holds the failure detail for unreachable or non-functional entries
	Error string `json:"error,omitempty"`
}

// Options configures a Validator
type Options struct {
	// MaxWorkers bounds concurrent probes; DefaultMaxWorkers when zero
	MaxWorkers int

	// ProbeSearch enables the search probe for searchable entries
	ProbeSearch bool
}

// Validator probes site entries for liveness
type Validator struct {
	fetcher     fetcher.Fetcher
	maxWorkers  int
	probeSearch bool
}

// New creates a validator using the given fetcher for all probes
func New(f fetcher.Fetcher, opts Options) *Validator {
	maxWorkers := opts.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = DefaultMaxWorkers
	}

	return &Validator{
		fetcher:     f,
		maxWorkers:  maxWorkers,
		probeSearch: opts.ProbeSearch,
	}
}

// ValidateSites probes every site entry of a document concurrently and
// returns one result per entry, in document order. A cancelled context stops
// the remaining probes; entries never probed come back unreachable with the
// context error attached.
func (v *Validator) ValidateSites(ctx context.Context, doc *document.Document, baseURL string) []Result {
	results := make([]Result, len(doc.Sites))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(v.maxWorkers)

	for i := range doc.Sites {
		site := &doc.Sites[i]
		g.Go(func() error {
			results[i] = v.validateSite(ctx, site, baseURL)
			return nil
		})
	}

	// Worker funcs never return errors; Wait only synchronizes
	_ = g.Wait()

	return results
}

// validateSite probes one site entry
func (v *Validator) validateSite(ctx context.Context, site *document.SiteEntry, baseURL string) Result {
	res := Result{
		SiteKey: site.Key,
		Name:    site.Name,
		Kind:    document.Classify(site),
	}

	// Probes skipped by a cancelled build report the cancellation as their error
	if err := ctx.Err(); err != nil {
		res.Error = err.Error()
		return res
	}

	api := document.StripChecksumSuffix(site.API)
	if api == "" {
		res.Error = "site has no api reference"
		return res
	}

	target := api
	if res.Kind != document.KindCompiled && !isAbsolute(api) && baseURL != "" {
		resolved, err := depscan.ResolveRef(baseURL, api)
		if err != nil {
			res.Error = fmt.Sprintf("cannot resolve api reference: %v", err)
			return res
		}
		target = resolved
	}

	start := time.Now()
	switch res.Kind {
	case document.KindAPI:
		v.probeEndpoint(ctx, target, site, &res)
	case document.KindCompiled:
		v.probeCompiled(ctx, site, baseURL, &res)
	default:
		// Script-backed entries are live when their plugin body exists;
		// the body itself is vetted later by the dependency scanner
		v.probeResource(ctx, target, &res)
	}
	res.LatencyMS = time.Since(start).Milliseconds()

	slog.Debug("Site probe finished",
		"site", site.Key,
		"kind", string(res.Kind),
		"reachable", res.Reachable,
		"functional", res.Functional,
		"latency_ms", res.LatencyMS)

	return res
}

// probeEndpoint checks a cms-style API endpoint for a recognizable payload
func (v *Validator) probeEndpoint(ctx context.Context, target string, site *document.SiteEntry, res *Result) {
	body, err := v.fetcher.Fetch(ctx, target)
	if err != nil {
		res.Error = err.Error()
		return
	}
	res.Reachable = true

	if !looksLikeAPIPayload(body) {
		res.Error = "endpoint responded with unrecognized payload"
		return
	}
	res.Functional = true

	// A searchable entry that cannot search is reported non-functional even
	// though its list endpoint answers
	if v.probeSearch && site.Searchable != 0 {
		if err := v.probeSearchEndpoint(ctx, target); err != nil {
			res.Functional = false
			res.Error = fmt.Sprintf("search probe failed: %v", err)
		}
	}
}

// probeCompiled validates a compiled-module entry. The api string of a csp_
// entry names a class inside a jar, never a fetchable resource: entries
// without their own jar resolve against the document's spider jar and are
// live as-is, entries with one are live when that jar downloads.
func (v *Validator) probeCompiled(ctx context.Context, site *document.SiteEntry, baseURL string, res *Result) {
	if !strings.HasPrefix(site.API, "csp_") || site.Jar == "" {
		res.Reachable = true
		res.Functional = true
		return
	}

	target := document.StripChecksumSuffix(site.Jar)
	if !isAbsolute(target) {
		if baseURL == "" {
			res.Error = "cannot resolve jar reference without a document base URL"
			return
		}
		resolved, err := depscan.ResolveRef(baseURL, target)
		if err != nil {
			res.Error = fmt.Sprintf("cannot resolve jar reference: %v", err)
			return
		}
		target = resolved
	}

	if _, err := v.fetcher.Fetch(ctx, target); err != nil {
		res.Error = err.Error()
		return
	}
	res.Reachable = true
	res.Functional = true
}

// probeResource checks that a plugin body can be fetched at all
func (v *Validator) probeResource(ctx context.Context, target string, res *Result) {
	if _, err := v.fetcher.Fetch(ctx, target); err != nil {
		res.Error = err.Error()
		return
	}
	res.Reachable = true
	res.Functional = true
}

// probeSearchEndpoint issues a keyword search and checks the response shape
func (v *Validator) probeSearchEndpoint(ctx context.Context, target string) error {
	u, err := url.Parse(target)
	if err != nil {
		return fmt.Errorf("invalid endpoint URL: %w", err)
	}
	q := u.Query()
	q.Set("wd", searchProbeKeyword)
	u.RawQuery = q.Encode()

	body, err := v.fetcher.Fetch(ctx, u.String())
	if err != nil {
		return err
	}

	// CMS search responses carry their results in a top-level "list" array
	list := gjson.GetBytes(body, "list")
	if !list.Exists() || !list.IsArray() {
		return fmt.Errorf("search response has no result list")
	}
	return nil
}

// looksLikeAPIPayload recognizes the payload shapes cms endpoints answer
// with: JSON objects and XML/RSS documents.
func looksLikeAPIPayload(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	return bytes.HasPrefix(trimmed, []byte("{")) ||
		bytes.HasPrefix(trimmed, []byte("<?xml")) ||
		bytes.HasPrefix(trimmed, []byte("<rss"))
}

func isAbsolute(ref string) bool {
	u, err := url.Parse(ref)
	return err == nil && u.IsAbs()
}

// CountReachable tallies reachable entries in a result set
func CountReachable(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Reachable {
			n++
		}
	}
	return n
}

// CountFunctional tallies functional entries in a result set
func CountFunctional(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Functional {
			n++
		}
	}
	return n
}
