package build

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Artifact tree layout under the output directory
const (
	// MergedDir holds the deployable document plus the content mirror
	MergedDir = "merged"

	// ReportsDir holds machine-readable build reports
	ReportsDir = "reports"

	// MergedDocumentFile is the merged document's file name
	MergedDocumentFile = "config.json"

	// SummaryFile is the whole-build report's file name
	SummaryFile = "build_summary.json"
)

// writeJSONArtifact marshals v and places it atomically. Artifacts are
// written to a temporary file and renamed so a crashed build never leaves a
// half-written document behind.
func writeJSONArtifact(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal artifact: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to place artifact: %w", err)
	}

	return nil
}

// validationReportPath names the per-source probe report
func validationReportPath(outputDir, sourceName string) string {
	return filepath.Join(outputDir, ReportsDir, "validation_"+sourceName+".json")
}

// Clean removes a build output directory. Missing directories are not an
// error, so clean is idempotent.
func Clean(outputDir string) error {
	if err := os.RemoveAll(outputDir); err != nil {
		return fmt.Errorf("failed to remove %s: %w", outputDir, err)
	}
	return nil
}
