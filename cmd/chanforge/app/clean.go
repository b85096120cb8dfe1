package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chanforge/chanforge/internal/build"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the build output directory",
	Long: `Remove the configured output directory with its mirrored resources and
reports. The premium output under custom/ is left alone; it is meant to be
committed and published.`,
	RunE: runClean,
}

func runClean(_ *cobra.Command, _ []string) error {
	cfg, err := loadBuildConfig()
	if err != nil {
		return err
	}

	dir := cfg.Output.GetDir()
	if err := build.Clean(dir); err != nil {
		return err
	}

	fmt.Printf("Removed %s\n", dir)
	return nil
}
