package app

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/chanforge/chanforge/internal/document"
	"github.com/chanforge/chanforge/internal/security"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Security-scan the mirrored plugin resources of the last build",
	Long: `Walk the build output and pattern-match every mirrored plugin resource
against the security rule set. Findings are advisory; the command fails
only when high-severity findings exist.`,
	RunE: runScan,
}

func runScan(_ *cobra.Command, _ []string) error {
	cfg, err := loadBuildConfig()
	if err != nil {
		return err
	}

	baseDir := cfg.Output.GetDir()
	if _, err := os.Stat(baseDir); err != nil {
		return fmt.Errorf("no build output at %s; run 'chanforge build' first", baseDir)
	}

	scanner := security.New()
	var findings []security.Finding

	walkErr := filepath.WalkDir(baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}

		kind := kindForScanPath(path)
		if kind == document.KindUnknown {
			return nil
		}

		//nolint:gosec // Paths come from walking the build output directory
		body, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		rel, relErr := filepath.Rel(baseDir, path)
		if relErr != nil {
			rel = path
		}
		findings = append(findings, scanner.Scan(rel, body, kind)...)
		return nil
	})
	if walkErr != nil {
		return walkErr
	}

	if len(findings) == 0 {
		fmt.Println("No security findings.")
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("SEVERITY", "RESOURCE", "OFFSET", "MESSAGE")
	for _, f := range findings {
		_ = table.Append(string(f.Severity), f.Resource, strconv.Itoa(f.Offset), f.Message)
	}
	if err := table.Render(); err != nil {
		return err
	}

	counts := security.CountBySeverity(findings)
	fmt.Printf("\n%d findings (high: %d, medium: %d, low: %d)\n",
		len(findings), counts[security.SeverityHigh], counts[security.SeverityMedium], counts[security.SeverityLow])

	if security.HasHighSeverity(findings) {
		return fmt.Errorf("high-severity findings present")
	}
	return nil
}

// kindForScanPath classifies a mirrored file by extension
func kindForScanPath(path string) document.SiteKind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".js":
		return document.KindScript
	case ".py":
		return document.KindInterpreted
	case ".jar":
		return document.KindCompiled
	default:
		return document.KindUnknown
	}
}
