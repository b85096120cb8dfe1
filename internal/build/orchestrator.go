package build

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/chanforge/chanforge/internal/aggregator"
	"github.com/chanforge/chanforge/internal/config"
	"github.com/chanforge/chanforge/internal/document"
	"github.com/chanforge/chanforge/internal/fetcher"
	"github.com/chanforge/chanforge/internal/filtering"
	"github.com/chanforge/chanforge/internal/security"
	"github.com/chanforge/chanforge/internal/sources"
	"github.com/chanforge/chanforge/internal/store"
	"github.com/chanforge/chanforge/internal/validator"
)

// maxSourceWorkers bounds how many sources are fetched and probed at once.
// Probing within each source has its own worker bound.
const maxSourceWorkers = 4

// Orchestrator runs the build pipeline
type Orchestrator struct {
	cfg     *config.Config
	factory sources.SourceHandlerFactory
	fetch   fetcher.Fetcher
	probe   *validator.Validator
	filters filtering.FilterService
	scanner *security.Scanner
}

// New creates an orchestrator for the given configuration
func New(cfg *config.Config) *Orchestrator {
	f := fetcher.New(fetcher.Options{
		Timeout:  cfg.Validation.GetTimeout(),
		MaxTries: cfg.Validation.GetMaxTries(),
	})

	return &Orchestrator{
		cfg:     cfg,
		factory: sources.NewSourceHandlerFactory(cfg.Validation.GetTimeout(), cfg.Validation.GetMaxTries()),
		fetch:   f,
		probe: validator.New(f, validator.Options{
			MaxWorkers:  cfg.Validation.GetMaxWorkers(),
			ProbeSearch: cfg.Validation.GetProbeSearch(),
		}),
		filters: filtering.NewDefaultFilterService(),
		scanner: security.New(),
	}
}

// sourceOutcome is the internal result of fetching and probing one source
type sourceOutcome struct {
	report   SourceReport
	document *document.Document
	baseURL  string
}

// ValidateSources fetches and probes every enabled source without building
// anything. This is the `validate` operation: reports are written, the
// content mirror is not touched.
func (o *Orchestrator) ValidateSources(ctx context.Context) ([]SourceReport, error) {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.Build.GetGlobalTimeout())
	defer cancel()

	outcomes := o.processSources(ctx)

	reports := make([]SourceReport, len(outcomes))
	for i, oc := range outcomes {
		reports[i] = oc.report
		if err := writeJSONArtifact(validationReportPath(o.cfg.Output.GetDir(), oc.report.Source), oc.report); err != nil {
			return nil, err
		}
	}
	return reports, nil
}

// Run executes the full build pipeline and returns the build summary. The
// summary is returned alongside most errors so callers can report how far
// the build got.
func (o *Orchestrator) Run(ctx context.Context) (*Summary, error) {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.Build.GetGlobalTimeout())
	defer cancel()

	summary := &Summary{
		BuildID:   uuid.NewString(),
		BuildName: o.cfg.GetBuildName(),
		StartedAt: time.Now().UTC(),
	}
	defer func() {
		summary.FinishedAt = time.Now().UTC()
		summary.DurationMS = summary.FinishedAt.Sub(summary.StartedAt).Milliseconds()
	}()

	slog.Info("Build started",
		"build_id", summary.BuildID,
		"build_name", summary.BuildName,
		"sources", len(o.cfg.EnabledSources()))

	// Stage 1: fetch and probe every source
	outcomes := o.processSources(ctx)
	failed := 0
	for _, oc := range outcomes {
		summary.Sources = append(summary.Sources, oc.report)
		if oc.report.Error != "" {
			failed++
		}
	}

	if ratio := o.cfg.Build.MaxFailureRatio; ratio > 0 && len(outcomes) > 0 {
		if frac := float64(failed) / float64(len(outcomes)); frac > ratio {
			return summary, fmt.Errorf("%d of %d sources failed (%.0f%%), over the configured threshold",
				failed, len(outcomes), frac*100)
		}
	}
	if failed == len(outcomes) {
		return summary, fmt.Errorf("all %d sources failed", failed)
	}

	// Stage 2: mirror plugin resources and collect the surviving documents
	outputDir := o.cfg.Output.GetDir()
	st, err := store.Open(filepath.Join(outputDir, MergedDir))
	if err != nil {
		return summary, err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("Failed to release store lock", "error", closeErr)
		}
	}()

	docs := o.mirrorSources(ctx, st, outcomes, summary)
	summary.MirroredResources = st.Count()

	// Stage 3: merge by source priority
	agg := aggregator.New(aggregator.Options{
		MinScore:     o.cfg.Build.GetMinScore(),
		MaxSites:     o.cfg.Build.GetMaxSites(),
		IncludeCloud: o.cfg.Build.IncludeCloud,
	})
	merged := agg.Merge(docs)
	summary.Merge = merged.Stats
	summary.Collisions = merged.Collisions

	for i := range summary.Sources {
		summary.Sources[i].KeptSites = countKept(merged, summary.Sources[i].Source)
	}

	// Stage 4: write artifacts
	artifactPath := filepath.Join(outputDir, MergedDir, MergedDocumentFile)
	if err := writeJSONArtifact(artifactPath, merged.Document); err != nil {
		return summary, err
	}
	summary.ArtifactPath = artifactPath

	for _, report := range summary.Sources {
		if err := writeJSONArtifact(validationReportPath(outputDir, report.Source), report); err != nil {
			return summary, err
		}
	}
	if err := writeJSONArtifact(filepath.Join(outputDir, ReportsDir, SummaryFile), summary); err != nil {
		return summary, err
	}

	slog.Info("Build finished",
		"build_id", summary.BuildID,
		"merged_sites", summary.Merge.MergedSites,
		"mirrored_resources", summary.MirroredResources,
		"artifact", artifactPath)

	if o.cfg.Build.FailOnHighSeverity && summary.Security.High > 0 {
		return summary, fmt.Errorf("%d high-severity security findings", summary.Security.High)
	}

	return summary, nil
}

// processSources fetches and probes every enabled source concurrently.
// Outcomes come back in configuration order regardless of completion order.
func (o *Orchestrator) processSources(ctx context.Context) []*sourceOutcome {
	enabled := o.cfg.EnabledSources()
	outcomes := make([]*sourceOutcome, len(enabled))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxSourceWorkers)

	for i := range enabled {
		src := &enabled[i]
		g.Go(func() error {
			outcomes[i] = o.processSource(gctx, src)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

// processSource fetches one source's document, applies its filters, and
// probes the surviving sites
func (o *Orchestrator) processSource(ctx context.Context, src *config.SourceConfig) *sourceOutcome {
	start := time.Now()
	oc := &sourceOutcome{
		report: SourceReport{
			Source:   src.Name,
			Type:     src.GetType(),
			Location: src.Location(),
		},
	}
	defer func() {
		oc.report.DurationMS = time.Since(start).Milliseconds()
	}()

	handler, err := o.factory.CreateHandler(src.GetType())
	if err != nil {
		oc.report.Error = err.Error()
		return oc
	}

	fetched, err := handler.FetchDocument(ctx, src)
	if err != nil {
		slog.Error("Source fetch failed", "source", src.Name, "error", err)
		oc.report.Error = err.Error()
		return oc
	}
	oc.report.Hash = fetched.Hash
	oc.report.SiteCount = fetched.SiteCount
	oc.baseURL = fetched.BaseURL

	doc, err := o.filters.ApplyFilters(ctx, fetched.Document, src.Filter)
	if err != nil {
		oc.report.Error = err.Error()
		return oc
	}
	oc.report.FilteredSites = len(doc.Sites)

	results := o.probe.ValidateSites(ctx, doc, fetched.BaseURL)
	oc.report.Results = results
	oc.report.Reachable = validator.CountReachable(results)
	oc.report.Functional = validator.CountFunctional(results)

	// Only functional sites move on; the probe results keep the reasons
	kept := doc.Sites[:0:0]
	for i, r := range results {
		if r.Functional {
			kept = append(kept, doc.Sites[i])
		}
	}
	probed := *doc
	probed.Sites = kept
	oc.document = &probed

	slog.Info("Source processed",
		"source", src.Name,
		"sites", oc.report.SiteCount,
		"functional", oc.report.Functional,
		"duration_ms", oc.report.DurationMS)

	return oc
}

// mirrorSources localizes plugin resources for every functional site and
// returns the documents that go into the merge
func (o *Orchestrator) mirrorSources(ctx context.Context, st *store.Store, outcomes []*sourceOutcome, summary *Summary) []aggregator.SourceDocument {
	m := newMirrorer(o.fetch, st, o.scanner, o.cfg.Validation.GetOnDecodeError())

	var docs []aggregator.SourceDocument
	for rank, oc := range outcomes {
		if oc.document == nil {
			continue
		}

		kept := oc.document.Sites[:0:0]
		for i := range oc.document.Sites {
			site := &oc.document.Sites[i]
			out := m.mirrorSite(ctx, site, oc.baseURL)

			summary.Security.Findings = append(summary.Security.Findings, out.findings...)
			if out.excluded {
				summary.Excluded = append(summary.Excluded, ExcludedSite{
					SiteKey: site.Key,
					Source:  oc.report.Source,
					Reason:  out.excludeReason,
				})
				slog.Warn("Site excluded during mirroring",
					"source", oc.report.Source,
					"site", site.Key,
					"reason", out.excludeReason)
				continue
			}
			kept = append(kept, *site)
		}
		oc.document.Sites = kept

		docs = append(docs, aggregator.SourceDocument{
			Source:       oc.report.Source,
			PriorityRank: rank,
			Document:     oc.document,
		})
	}

	counts := security.CountBySeverity(summary.Security.Findings)
	summary.Security.High = counts[security.SeverityHigh]
	summary.Security.Medium = counts[security.SeverityMedium]
	summary.Security.Low = counts[security.SeverityLow]

	return docs
}

// countKept tallies how many merged sites a source contributed
func countKept(merged *aggregator.Result, source string) int {
	keys := make(map[string]struct{}, len(merged.Document.Sites))
	for _, s := range merged.Document.Sites {
		keys[s.Key] = struct{}{}
	}

	n := 0
	for _, rs := range merged.Rated {
		if rs.Source != source {
			continue
		}
		if _, ok := keys[rs.Site.Key]; ok {
			n++
		}
	}
	return n
}
