package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docmigrate/internal/config"
	derrors "git.home.luguber.info/inful/docmigrate/internal/foundation/errors"
	"git.home.luguber.info/inful/docmigrate/internal/report"
	"git.home.luguber.info/inful/docmigrate/internal/testutil"
)

// run parses args like the binary does and runs the selected command.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("docmigrate"),
		kong.Vars{"version": "test"},
		kong.Exit(func(int) { t.Fatalf("unexpected exit for %v", args) }),
	)
	require.NoError(t, err)
	ctx, err := parser.Parse(args)
	require.NoError(t, err)

	var out bytes.Buffer
	err = ctx.Run(&Global{Stdout: &out})
	return out.String(), err
}

func mkdocsProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	testutil.WriteFile(t, root, "mkdocs.yml", "site_name: x\nnav:\n  - Home: index.md\n  - Guide:\n      - Intro: guide/intro.md\n")
	testutil.WriteFile(t, root, "docs/index.md", "# Home\n")
	testutil.WriteFile(t, root, "docs/guide/intro.md", "![d](img/d.png)\n")
	testutil.WriteFile(t, root, "docs/extra.md", "# Extra\n")
	testutil.WriteFile(t, root, "static/img/d.png", "png")
	return root
}

func TestConvert_FlagsOnly(t *testing.T) {
	root := mkdocsProject(t)
	metricsFile := filepath.Join(root, "metrics.prom")

	out, err := run(t,
		"-c", filepath.Join(root, "missing.yaml"),
		"convert",
		"--mkdocs-config", filepath.Join(root, "mkdocs.yml"),
		"--source", filepath.Join(root, "docs"),
		"--dest", filepath.Join(root, "content"),
		"--assets-folder", filepath.Join(root, "static"),
		"--snippet-destination", filepath.Join(root, "snippets"),
		"--workers", "2",
		"--report-format", "json",
		"--metrics-file", metricsFile,
	)
	require.NoError(t, err)

	var got report.JSONOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 3, got.Converted)
	assert.Equal(t, 2, got.Matched)
	assert.Equal(t, []report.AssetRef{{Asset: "d.png", Document: "guide/intro.md"}}, got.Assets)
	require.Len(t, got.Unmatched, 1)
	assert.Equal(t, "extra.md", got.Unmatched[0].Path)

	testutil.NewFileAssertions(t, root).
		AssertFileEquals("content/guide/_index.md", "+++\ntitle = \"Guide\"\nweight = 20\n+++\n").
		AssertFileContains("content/guide/intro.md", "![d](/img/d.png)")

	prom, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "docmigrate_documents_total")
}

func TestConvert_ConfigFileWithOverride(t *testing.T) {
	root := mkdocsProject(t)
	cfgPath := filepath.Join(root, config.DefaultFile)
	testutil.WriteFile(t, root, config.DefaultFile, "mkdocs_config: "+filepath.Join(root, "mkdocs.yml")+"\n"+
		"source: "+filepath.Join(root, "docs")+"\n"+
		"dest: "+filepath.Join(root, "ignored")+"\n"+
		"assets_folder: "+filepath.Join(root, "static")+"\n"+
		"snippet_destination: "+filepath.Join(root, "snippets")+"\n"+
		"exclude: [\"extra.md\"]\n")

	dest := filepath.Join(root, "content")
	out, err := run(t, "-c", cfgPath, "convert", "--dest", dest)
	require.NoError(t, err)
	assert.Contains(t, out, "CONVERSION SUMMARY")
	assert.Contains(t, out, "Conversion complete!")

	testutil.NewFileAssertions(t, root).
		AssertFileExists("content/index.md").
		AssertNotExists("content/extra.md").
		AssertNotExists("ignored")
}

func TestConvert_InvalidConfiguration(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "-c", filepath.Join(dir, "missing.yaml"), "convert", "--source", dir)
	require.Error(t, err)
	assert.True(t, derrors.HasCategory(err, derrors.CategoryValidation))
	assert.Equal(t, 2, derrors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
}

func TestConvert_MissingNavIsFatal(t *testing.T) {
	root := mkdocsProject(t)
	testutil.WriteFile(t, root, "mkdocs.yml", "site_name: x\n")

	_, err := run(t, "-c", filepath.Join(root, "missing.yaml"), "convert",
		"--mkdocs-config", filepath.Join(root, "mkdocs.yml"),
		"--source", filepath.Join(root, "docs"),
		"--dest", filepath.Join(root, "content"),
		"--assets-folder", filepath.Join(root, "static"),
		"--snippet-destination", filepath.Join(root, "snippets"),
	)
	require.Error(t, err)
	assert.True(t, derrors.HasCategory(err, derrors.CategoryNav))
}

func TestInit(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, "init", "--output", dir)
	require.NoError(t, err)
	assert.Contains(t, out, config.DefaultFile)

	cfg, err := config.Load(filepath.Join(dir, config.DefaultFile))
	require.NoError(t, err)
	assert.Equal(t, "mkdocs.yml", cfg.MkDocsConfig)

	_, err = run(t, "init", "--output", dir)
	require.Error(t, err)

	_, err = run(t, "init", "--output", dir, "--force")
	require.NoError(t, err)
}

func TestNewVersion_UnknownProject(t *testing.T) {
	_, err := run(t, "new-version", "--project", "nope", "--site-root", t.TempDir(), "v1.0")
	require.Error(t, err)
	assert.True(t, derrors.HasCategory(err, derrors.CategoryValidation))
	assert.Contains(t, err.Error(), "eso, reloader")
}

func TestNewVersion(t *testing.T) {
	site := t.TempDir()
	testutil.WriteFile(t, site, "data/reloader_versions.toml",
		"[[versions]]\nversion = \"v1.0 (latest)\"\nurl = \"/reloader-docs/v1.0/\"\ntag = \"v1.0\"\nlatest = true\n")
	testutil.WriteFile(t, site, "content/en/reloader-docs/_index.md", "[latest version](/reloader-docs/v1.0/)\n")
	testutil.WriteFile(t, site, "content/en/reloader-docs/unreleased/page.md", "page\n")

	out, err := run(t, "new-version", "--project", "reloader", "--site-root", site,
		"--tested-k8s-versions", "v1.34, v1.35", "--release-date", "2026-10-19", "v1.1")
	require.NoError(t, err)
	assert.Contains(t, out, "Released Reloader Operator v1.1 (previous latest v1.0)")

	testutil.NewFileAssertions(t, site).
		AssertFileEquals("content/en/reloader-docs/_index.md", "[latest version](/reloader-docs/v1.1/)\n").
		AssertFileEquals("content/en/reloader-docs/v1.1/page.md", "page\n").
		AssertFileContains("data/reloader_versions.toml", `version = "v1.1 (latest)"`)
}

func TestWatchOptions(t *testing.T) {
	cfg := &config.Config{
		MkDocsConfig:       "mkdocs.yml",
		Source:             "docs",
		AssetsFolder:       "docs",
		Dest:               "content",
		SnippetDestination: "snippets",
		Manifest:           "manifest.json",
	}
	opts := watchOptions(cfg, time.Second)
	assert.Equal(t, []string{"docs"}, opts.Dirs)
	assert.Equal(t, []string{"mkdocs.yml"}, opts.Files)
	assert.Equal(t, []string{"content", "snippets", "manifest.json", ""}, opts.Ignore)
	assert.Equal(t, time.Second, opts.Debounce)

	cfg.AssetsFolder = "static"
	assert.Equal(t, []string{"docs", "static"}, watchOptions(cfg, 0).Dirs)
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, splitList(""))
	assert.Equal(t, []string{"v1.34", "v1.35"}, splitList(" v1.34 ,,v1.35"))
}
