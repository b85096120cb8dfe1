package build

import (
	"time"

	"github.com/chanforge/chanforge/internal/aggregator"
	"github.com/chanforge/chanforge/internal/security"
	"github.com/chanforge/chanforge/internal/validator"
)

// SourceReport captures everything that happened to one source during a build
type SourceReport struct {
	// Source is the configured source name
	Source string `json:"source"`

	// Type is the source type (git, http, file)
	Type string `json:"type"`

	// Location is the source's document reference
	Location string `json:"location"`

	// Hash is the sha256 of the fetched document, for change detection
	Hash string `json:"hash,omitempty"`

	// Error is set when the source failed outright and contributed nothing
	Error string `json:"error,omitempty"`

	// SiteCount is the number of site entries in the fetched document
	SiteCount int `json:"site_count"`

	// FilteredSites is the number of entries surviving the source's filters
	FilteredSites int `json:"filtered_sites"`

	// Reachable is the number of probed entries whose endpoint answered
	Reachable int `json:"reachable"`

	// Functional is the number of probed entries with a recognizable payload
	Functional int `json:"functional"`

	// KeptSites is the number of entries this source contributed to the merge
	KeptSites int `json:"kept_sites"`

	// DurationMS is the wall time spent fetching and probing this source
	DurationMS int64 `json:"duration_ms"`

	// Results holds the per-site probe outcomes
	Results []validator.Result `json:"results,omitempty"`
}

// ExcludedSite records a site dropped during resource mirroring
type ExcludedSite struct {
	// SiteKey is the dropped entry's key
	SiteKey string `json:"site_key"`

	// Source is the source that contributed the entry
	Source string `json:"source"`

	// Reason explains the exclusion
	Reason string `json:"reason"`
}

// SecuritySummary aggregates the scan findings of one build
type SecuritySummary struct {
	// Findings lists every rule match across all mirrored resources
	Findings []security.Finding `json:"findings,omitempty"`

	// High, Medium and Low tally findings per severity
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// Summary is the machine-readable report of one build run
type Summary struct {
	// BuildID uniquely identifies this run
	BuildID string `json:"build_id"`

	// BuildName is the configured build profile name
	BuildName string `json:"build_name"`

	// StartedAt and FinishedAt bound the run in UTC
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// DurationMS is the total wall time of the run
	DurationMS int64 `json:"duration_ms"`

	// Sources holds one report per enabled source, in priority order
	Sources []SourceReport `json:"sources"`

	// Merge summarizes the aggregation stage
	Merge aggregator.Stats `json:"merge"`

	// Collisions records duplicate site keys dropped by the merge
	Collisions []aggregator.Collision `json:"collisions,omitempty"`

	// Excluded records sites dropped during resource mirroring
	Excluded []ExcludedSite `json:"excluded,omitempty"`

	// Security aggregates the scan findings of all mirrored resources
	Security SecuritySummary `json:"security"`

	// MirroredResources counts distinct resources in the content mirror
	MirroredResources int `json:"mirrored_resources"`

	// ArtifactPath is the merged document's output path
	ArtifactPath string `json:"artifact_path,omitempty"`
}
