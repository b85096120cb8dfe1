package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chanforge/chanforge/internal/document"
)

func TestNewRootCmd(t *testing.T) {
	root := NewRootCmd()
	require.NotNil(t, root)
	assert.Equal(t, "chanforge", root.Use)

	wantSubcommands := []string{"validate", "build", "premium", "scan", "clean", "version"}
	for _, name := range wantSubcommands {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, "subcommand %s", name)
		assert.Equal(t, name, cmd.Name())
	}

	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
	assert.NotNil(t, root.PersistentFlags().Lookup("debug"))

	validate, _, err := root.Find([]string{"validate"})
	require.NoError(t, err)
	assert.NotNil(t, validate.Flags().Lookup("url"))
}

func TestAdhocConfig(t *testing.T) {
	t.Parallel()

	cfg := adhocConfig("https://example.com/config.json")
	require.Len(t, cfg.Sources, 1)
	assert.Equal(t, "adhoc", cfg.Sources[0].Name)
	require.NotNil(t, cfg.Sources[0].HTTP)
	assert.Equal(t, "https://example.com/config.json", cfg.Sources[0].HTTP.URL)
	assert.True(t, cfg.Sources[0].IsEnabled())
}

func TestKindForScanPath(t *testing.T) {
	t.Parallel()
	tests := []struct {
		path string
		want document.SiteKind
	}{
		{"merged/js/abc123.js", document.KindScript},
		{"merged/py/abc123.py", document.KindInterpreted},
		{"merged/jar/abc123.jar", document.KindCompiled},
		{"merged/JAR/ABC.JAR", document.KindCompiled},
		{"merged/config.json", document.KindUnknown},
		{"reports/build_summary.json", document.KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, kindForScanPath(tt.path))
		})
	}
}
