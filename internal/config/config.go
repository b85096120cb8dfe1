// Package config provides configuration loading and management for the build pipeline.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix is the environment variable prefix for application settings
// (e.g. CHANFORGE_LOG_LEVEL)
const EnvPrefix = "CHANFORGE"

const (
	// SourceTypeGit is the type for documents stored in Git repositories
	SourceTypeGit = "git"

	// SourceTypeHTTP is the type for documents fetched over HTTP(S)
	SourceTypeHTTP = "http"

	// SourceTypeFile is the type for documents stored in local files
	SourceTypeFile = "file"
)

const (
	// DecodePolicyExclude drops a site whose scanned resource cannot be decoded
	DecodePolicyExclude = "exclude"

	// DecodePolicyKeep keeps such a site, minus the undecodable resource
	DecodePolicyKeep = "keep"
)

// Defaults applied when the corresponding fields are omitted
const (
	DefaultTimeout       = 15 * time.Second
	DefaultMaxWorkers    = 10
	DefaultMaxTries      = 2
	DefaultMaxSites      = 100
	DefaultMinScore      = 30
	DefaultGlobalTimeout = 15 * time.Minute
	DefaultOutputDir     = "build_output"
)

// Option defines the interface for configuration options
type Option func(*loaderConfig) error

// loaderConfig defines the configuration for loading a configuration
type loaderConfig struct {
	path string
}

// WithConfigPath loads configuration from a YAML file
func WithConfigPath(path string) Option {
	return func(cfg *loaderConfig) error {
		if path == "" {
			return fmt.Errorf("path is required")
		}

		// Resolve symlinks to prevent symlink attacks.
		// Note that this calls filepath.Clean internally.
		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return fmt.Errorf("failed to evaluate symlinks: %w", err)
		}

		// Validate the path to prevent path traversal attacks
		if !filepath.IsAbs(realPath) {
			if !filepath.IsLocal(realPath) {
				return fmt.Errorf("path is not local or contains invalid traversal: %s", path)
			}
		}

		cfg.path = realPath
		return nil
	}
}

// Config represents the root configuration structure
type Config struct {
	// BuildName is the name/identifier for this build profile
	// Defaults to "default" if not specified
	BuildName string `yaml:"buildName,omitempty"`

	// Sources lists document sources in priority order: earlier entries win
	// key collisions during the merge
	Sources []SourceConfig `yaml:"sources"`

	Validation ValidationConfig `yaml:"validation,omitempty"`
	Build      BuildConfig      `yaml:"build,omitempty"`
	Output     OutputConfig     `yaml:"output,omitempty"`
}

// SourceConfig defines a single document source configuration
type SourceConfig struct {
	// Name is the identifier for this source
	Name string `yaml:"name"`

	// Type-specific configurations (only one should be set)
	Git  *GitConfig  `yaml:"git,omitempty"`
	HTTP *HTTPConfig `yaml:"http,omitempty"`
	File *FileConfig `yaml:"file,omitempty"`

	// Enabled defaults to true when omitted
	Enabled *bool `yaml:"enabled,omitempty"`

	// Per-source filtering rules
	Filter *FilterConfig `yaml:"filter,omitempty"`
}

// GitConfig defines Git source settings
type GitConfig struct {
	// Repository is the Git repository URL (HTTP/HTTPS/SSH)
	Repository string `yaml:"repository"`

	// Branch is the Git branch to use (mutually exclusive with Tag and Commit)
	Branch string `yaml:"branch,omitempty"`

	// Tag is the Git tag to use (mutually exclusive with Branch and Commit)
	Tag string `yaml:"tag,omitempty"`

	// Commit is the Git commit SHA to use (mutually exclusive with Branch and Tag)
	Commit string `yaml:"commit,omitempty"`

	// Path is the path to the document within the repository
	Path string `yaml:"path,omitempty"`
}

// HTTPConfig defines HTTP source configuration
type HTTPConfig struct {
	// URL is the document URL
	URL string `yaml:"url"`
}

// FileConfig defines local file source configuration
type FileConfig struct {
	// Path is the path to the document on the local filesystem
	// Can be absolute or relative to the working directory
	Path string `yaml:"path"`
}

// FilterConfig defines filtering rules for site entries
type FilterConfig struct {
	Names *NameFilterConfig `yaml:"names,omitempty"`
}

// NameFilterConfig defines name-based filtering. Patterns are globs matched
// against both the site key and the display name; exclude wins over include,
// and an empty include list admits everything.
type NameFilterConfig struct {
	Include []string `yaml:"include,omitempty"`
	Exclude []string `yaml:"exclude,omitempty"`
}

// ValidationConfig defines probe and fetch behavior
type ValidationConfig struct {
	// Timeout bounds a single fetch or probe attempt (e.g. "15s")
	Timeout string `yaml:"timeout,omitempty"`

	// MaxWorkers bounds concurrent probes within one document
	MaxWorkers int `yaml:"maxWorkers,omitempty"`

	// MaxTries bounds fetch attempts on transient failures
	MaxTries int `yaml:"maxTries,omitempty"`

	// ProbeSearch enables the search probe for searchable entries
	ProbeSearch *bool `yaml:"probeSearch,omitempty"`

	// OnDecodeError decides what happens to a site whose scanned resource
	// has a corrupt packed encoding: "exclude" (default) or "keep"
	OnDecodeError string `yaml:"onDecodeError,omitempty"`
}

// BuildConfig defines merge-stage behavior
type BuildConfig struct {
	// MaxSites caps surviving entries in the merged document
	MaxSites int `yaml:"maxSites,omitempty"`

	// MinScore is the minimum quality score an entry needs to survive.
	// Set to a negative value to disable the cutoff.
	MinScore int `yaml:"minScore,omitempty"`

	// IncludeCloud keeps cloud-drive backed entries that are otherwise
	// penalized out of the merge
	IncludeCloud bool `yaml:"includeCloud,omitempty"`

	// FailOnHighSeverity turns high-severity security findings fatal
	FailOnHighSeverity bool `yaml:"failOnHighSeverity,omitempty"`

	// MaxFailureRatio halts the build when more than this fraction of
	// sources fails outright (0 disables the threshold)
	MaxFailureRatio float64 `yaml:"maxFailureRatio,omitempty"`

	// GlobalTimeout bounds the whole build (e.g. "10m")
	GlobalTimeout string `yaml:"globalTimeout,omitempty"`
}

// OutputConfig defines artifact locations
type OutputConfig struct {
	// Dir is the artifact output directory
	Dir string `yaml:"dir,omitempty"`
}

// LoadConfig loads and parses configuration from a YAML file
func LoadConfig(opts ...Option) (*Config, error) {
	loaderCfg := &loaderConfig{}
	for _, opt := range opts {
		if err := opt(loaderCfg); err != nil {
			return nil, err
		}
	}

	if loaderCfg.path == "" {
		return nil, fmt.Errorf("path is required")
	}

	// Read the entire file into memory
	data, err := os.ReadFile(loaderCfg.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML content
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	// Validate the config
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// GetBuildName returns the build profile name, using "default" if not specified
func (c *Config) GetBuildName() string {
	if c.BuildName == "" {
		return "default"
	}
	return c.BuildName
}

// EnabledSources returns the sources participating in the build, in priority order
func (c *Config) EnabledSources() []SourceConfig {
	out := make([]SourceConfig, 0, len(c.Sources))
	for _, src := range c.Sources {
		if src.IsEnabled() {
			out = append(out, src)
		}
	}
	return out
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c == nil {
		return fmt.Errorf("config cannot be nil")
	}

	// Validate at least one source is configured
	if len(c.Sources) == 0 {
		return fmt.Errorf("at least one source must be configured")
	}

	// Validate each source configuration
	sourceNames := make(map[string]bool)
	for i, src := range c.Sources {
		if src.Name == "" {
			return fmt.Errorf("source[%d]: name is required", i)
		}

		// Check for duplicate source names
		if sourceNames[src.Name] {
			return fmt.Errorf("source[%d]: duplicate source name '%s'", i, src.Name)
		}
		sourceNames[src.Name] = true

		if err := validateSourceConfig(&src, i); err != nil {
			return err
		}
	}

	if err := c.Validation.validate(); err != nil {
		return err
	}
	return c.Build.validate()
}

// validateSourceConfig validates a single source configuration
func validateSourceConfig(src *SourceConfig, index int) error {
	prefix := fmt.Sprintf("source[%d] (%s)", index, src.Name)

	// Validate exactly one source type is configured
	if err := validateSourceTypeCount(src, prefix); err != nil {
		return err
	}

	// Validate type-specific settings
	return validateSourceSpecificConfig(src, prefix)
}

// validateSourceTypeCount ensures exactly one source type is configured
func validateSourceTypeCount(src *SourceConfig, prefix string) error {
	configCount := 0
	if src.Git != nil {
		configCount++
	}
	if src.HTTP != nil {
		configCount++
	}
	if src.File != nil {
		configCount++
	}

	if configCount == 0 {
		return fmt.Errorf("%s: one of git, http, or file configuration must be specified", prefix)
	}
	if configCount > 1 {
		return fmt.Errorf("%s: only one of git, http, or file configuration may be specified", prefix)
	}

	return nil
}

// validateSourceSpecificConfig validates the configuration for each source type
func validateSourceSpecificConfig(src *SourceConfig, prefix string) error {
	if src.Git != nil {
		return validateGitConfig(src.Git, prefix)
	}

	if src.HTTP != nil {
		return validateHTTPConfig(src.HTTP, prefix)
	}

	if src.File != nil {
		return validateFileConfig(src.File, prefix)
	}

	return nil
}

// validateGitConfig validates Git-specific configuration
func validateGitConfig(git *GitConfig, prefix string) error {
	if git.Repository == "" {
		return fmt.Errorf("%s: git.repository is required", prefix)
	}

	specified := 0
	if git.Branch != "" {
		specified++
	}
	if git.Tag != "" {
		specified++
	}
	if git.Commit != "" {
		specified++
	}
	if specified > 1 {
		return fmt.Errorf("%s: only one of branch, tag, or commit may be specified", prefix)
	}

	return nil
}

// validateHTTPConfig validates HTTP-specific configuration
func validateHTTPConfig(h *HTTPConfig, prefix string) error {
	if h.URL == "" {
		return fmt.Errorf("%s: http.url is required", prefix)
	}
	return nil
}

// validateFileConfig validates File-specific configuration
func validateFileConfig(file *FileConfig, prefix string) error {
	if file.Path == "" {
		return fmt.Errorf("%s: file.path is required", prefix)
	}
	return nil
}

func (v *ValidationConfig) validate() error {
	if err := validateDuration(v.Timeout, "validation.timeout"); err != nil {
		return err
	}

	switch v.OnDecodeError {
	case "", DecodePolicyExclude, DecodePolicyKeep:
	default:
		return fmt.Errorf("validation.onDecodeError must be %q or %q, got %q",
			DecodePolicyExclude, DecodePolicyKeep, v.OnDecodeError)
	}

	return nil
}

func (b *BuildConfig) validate() error {
	if err := validateDuration(b.GlobalTimeout, "build.globalTimeout"); err != nil {
		return err
	}

	if b.MaxFailureRatio < 0 || b.MaxFailureRatio > 1 {
		return fmt.Errorf("build.maxFailureRatio must be within [0, 1], got %g", b.MaxFailureRatio)
	}

	return nil
}

func validateDuration(value, field string) error {
	if value == "" {
		return nil
	}
	if _, err := time.ParseDuration(value); err != nil {
		return fmt.Errorf("%s must be a valid duration (e.g., '30s', '5m'): %w", field, err)
	}
	return nil
}

// GetType returns the inferred type of the source config based on which field is present
func (s *SourceConfig) GetType() string {
	if s.Git != nil {
		return SourceTypeGit
	}
	if s.HTTP != nil {
		return SourceTypeHTTP
	}
	if s.File != nil {
		return SourceTypeFile
	}
	return ""
}

// IsEnabled reports whether the source participates in the build
func (s *SourceConfig) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// Location returns the source's document reference for logs and reports
func (s *SourceConfig) Location() string {
	switch s.GetType() {
	case SourceTypeGit:
		return s.Git.Repository
	case SourceTypeFile:
		return s.File.Path
	case SourceTypeHTTP:
		return s.HTTP.URL
	}
	return ""
}

// GetTimeout returns the per-attempt timeout with the default applied
func (v *ValidationConfig) GetTimeout() time.Duration {
	return parseDurationOr(v.Timeout, DefaultTimeout)
}

// GetMaxWorkers returns the worker bound with the default applied
func (v *ValidationConfig) GetMaxWorkers() int {
	if v.MaxWorkers <= 0 {
		return DefaultMaxWorkers
	}
	return v.MaxWorkers
}

// GetMaxTries returns the fetch attempt bound with the default applied
func (v *ValidationConfig) GetMaxTries() int {
	if v.MaxTries <= 0 {
		return DefaultMaxTries
	}
	return v.MaxTries
}

// GetProbeSearch reports whether search probes run (default true)
func (v *ValidationConfig) GetProbeSearch() bool {
	return v.ProbeSearch == nil || *v.ProbeSearch
}

// GetOnDecodeError returns the decode-error policy with the default applied
func (v *ValidationConfig) GetOnDecodeError() string {
	if v.OnDecodeError == "" {
		return DecodePolicyExclude
	}
	return v.OnDecodeError
}

// GetMaxSites returns the merged-site cap with the default applied
func (b *BuildConfig) GetMaxSites() int {
	if b.MaxSites <= 0 {
		return DefaultMaxSites
	}
	return b.MaxSites
}

// GetMinScore returns the quality cutoff with the default applied
func (b *BuildConfig) GetMinScore() int {
	if b.MinScore == 0 {
		return DefaultMinScore
	}
	return b.MinScore
}

// GetGlobalTimeout returns the whole-build deadline with the default applied
func (b *BuildConfig) GetGlobalTimeout() time.Duration {
	return parseDurationOr(b.GlobalTimeout, DefaultGlobalTimeout)
}

// GetDir returns the output directory with the default applied
func (o *OutputConfig) GetDir() string {
	if o.Dir == "" {
		return DefaultOutputDir
	}
	return o.Dir
}

func parseDurationOr(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
