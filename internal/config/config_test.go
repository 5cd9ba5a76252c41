package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derrors "git.home.luguber.info/inful/docmigrate/internal/foundation/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "docmigrate.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestLoad(t *testing.T) {
	t.Setenv("DOCS_OUT", "content/en/project")
	p := writeConfig(t, `
mkdocs_config: mkdocs.yml
source: docs
dest: ${DOCS_OUT}
assets_folder: static
snippet_destination: snippets
exclude: ["drafts/**"]
workers: 3
report_format: JSON
log_level: Debug
`)

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "content/en/project", cfg.Dest)
	assert.Equal(t, filepath.Join("docs", "snippets"), cfg.SnippetSource)
	assert.Equal(t, []string{"drafts/**"}, cfg.Exclude)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, ReportFormatJSON, cfg.ReportFormat)
	assert.Equal(t, LogLevelDebug, cfg.LogLevel)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	require.NoError(t, cfg.Validate())
}

func TestLoad_Defaults(t *testing.T) {
	p := writeConfig(t, "source: docs\n")

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, ReportFormatText, cfg.ReportFormat)
	assert.Equal(t, LogLevelInfo, cfg.LogLevel)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, derrors.HasCategory(err, derrors.CategoryConfig))
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "source: [docs\n"))
	require.Error(t, err)
	assert.True(t, derrors.HasCategory(err, derrors.CategoryConfig))
}

func TestLoad_UnknownReportFormat(t *testing.T) {
	_, err := Load(writeConfig(t, "report_format: xml\n"))
	require.Error(t, err)
	assert.True(t, derrors.HasCategory(err, derrors.CategoryValidation))
}

func TestValidate(t *testing.T) {
	cfg := Default()
	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, derrors.HasCategory(err, derrors.CategoryValidation))
	assert.Contains(t, err.Error(), "mkdocs_config")

	cfg.MkDocsConfig = "mkdocs.yml"
	cfg.Source = "docs"
	cfg.Dest = "out"
	cfg.AssetsFolder = "static"
	cfg.SnippetDestination = "snippets"
	require.NoError(t, cfg.Validate())

	cfg.Workers = 0
	require.Error(t, cfg.Validate())
}

func TestInit(t *testing.T) {
	p := filepath.Join(t.TempDir(), "docmigrate.yaml")
	require.NoError(t, Init(p, false))

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "mkdocs.yml", cfg.MkDocsConfig)
	assert.Equal(t, 4, cfg.Workers)

	err = Init(p, false)
	require.Error(t, err)
	require.NoError(t, Init(p, true))
}
