package migrate

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docmigrate/internal/config"
	derrors "git.home.luguber.info/inful/docmigrate/internal/foundation/errors"
	"git.home.luguber.info/inful/docmigrate/internal/frontmatter"
	"git.home.luguber.info/inful/docmigrate/internal/manifest"
	"git.home.luguber.info/inful/docmigrate/internal/metrics"
	"git.home.luguber.info/inful/docmigrate/internal/report"
)

const mkdocsYAML = `site_name: Example
nav:
  - Home: index.md
  - Guide:
      - Intro: guide/intro.md
      - "guide/usage.md"
theme:
  name: material
`

func write(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
}

// project lays out a small MkDocs project and returns a config pointing at it.
func project(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	write(t, root, "mkdocs.yml", mkdocsYAML)
	write(t, root, "docs/index.md", "# Home\n")
	write(t, root, "docs/guide/intro.md", "---\nhide:\n  - toc\n---\n\n# Intro<br>\n\n![d](../img/diagram.png)\n\n--8<-- \"cfg.yaml\"\n")
	write(t, root, "docs/guide/usage.md", "```yaml\n{% include \"present.yaml\" %}\n```\n")
	write(t, root, "docs/extra.md", "# Extra\n")
	write(t, root, "docs/snippets/present.yaml", "a: 1\n")
	write(t, root, "static/images/diagram.png", "png")

	cfg := config.Default()
	cfg.MkDocsConfig = filepath.Join(root, "mkdocs.yml")
	cfg.Source = filepath.Join(root, "docs")
	cfg.Dest = filepath.Join(root, "content")
	cfg.AssetsFolder = filepath.Join(root, "static")
	cfg.SnippetDestination = filepath.Join(root, "snippets")
	require.NoError(t, cfg.Normalize())
	require.NoError(t, cfg.Validate())
	return cfg
}

func readFile(t *testing.T, p string) string {
	t.Helper()
	data, err := os.ReadFile(p)
	require.NoError(t, err)
	return string(data)
}

func TestRun(t *testing.T) {
	cfg := project(t)
	cfg.Manifest = filepath.Join(t.TempDir(), "manifest.json")

	summary, err := New(cfg).Run(context.Background())
	require.NoError(t, err)

	assert.True(t, summary.SnippetsCopied)
	assert.Equal(t, 3, summary.NavFiles)
	assert.Equal(t, 1, summary.Sections)
	assert.Equal(t, 4, summary.Converted)
	assert.Equal(t, 3, summary.Matched)
	assert.Empty(t, summary.Failures)
	assert.Equal(t, []report.UnmatchedDocument{{Path: "extra.md", Weight: 1050}}, summary.Unmatched)
	assert.Equal(t, []report.AssetRef{{Asset: "diagram.png", Document: "guide/intro.md"}}, summary.Assets.Pairs())
	assert.Equal(t, []report.MissingReference{{Path: "cfg.yaml", Document: "guide/intro.md"}}, summary.MissingSnippets)

	assert.Equal(t, frontmatter.RenderIndex("Guide", 20), readFile(t, filepath.Join(cfg.Dest, "guide", IndexFile)))
	assert.FileExists(t, filepath.Join(cfg.SnippetDestination, "present.yaml"))

	intro := readFile(t, filepath.Join(cfg.Dest, "guide", "intro.md"))
	assert.Equal(t, frontmatter.RenderPage("Intro", 30)+
		"# Intro\n\n![d](/images/diagram.png)\n\n"+
		"{{< readfile file=/snippets/cfg.yaml code=\"true\" lang=\"yaml\" >}}\n", intro)

	usage := readFile(t, filepath.Join(cfg.Dest, "guide", "usage.md"))
	assert.Equal(t, frontmatter.RenderPage("Usage", 40)+
		"{{< readfile file=/snippets/present.yaml code=\"true\" lang=\"yaml\" >}}\n", usage)

	extra := readFile(t, filepath.Join(cfg.Dest, "extra.md"))
	assert.Contains(t, extra, "weight = 1050\n")

	m, err := manifest.FromJSON([]byte(readFile(t, cfg.Manifest)))
	require.NoError(t, err)
	assert.Equal(t, summary.RunID, m.ID)
	assert.Equal(t, "success", m.Status)
	require.Len(t, m.Documents, 4)
	assert.Equal(t, "extra.md", m.Documents[0].Source)
	assert.False(t, m.Documents[0].InNav)
	assert.Equal(t, manifest.Fingerprint(intro), m.Documents[1].Fingerprint)
	assert.Equal(t, []manifest.SectionEntry{{Dir: "guide", Title: "Guide", Weight: 20}}, m.Sections)
}

func TestRun_WorkerCountDoesNotChangeOutput(t *testing.T) {
	sequential := project(t)
	parallel := project(t)
	parallel.Workers = 8

	a, err := New(sequential).Run(context.Background())
	require.NoError(t, err)
	b, err := New(parallel).Run(context.Background())
	require.NoError(t, err)

	ignore := cmpopts.IgnoreFields(report.Summary{}, "RunID", "Source", "Dest", "SnippetDest", "Duration")
	if diff := cmp.Diff(a, b, ignore); diff != "" {
		t.Errorf("summary differs between worker counts (-sequential +parallel):\n%s", diff)
	}
	for _, rel := range []string{"index.md", "extra.md", "guide/intro.md", "guide/usage.md", "guide/_index.md"} {
		assert.Equal(t,
			readFile(t, filepath.Join(sequential.Dest, filepath.FromSlash(rel))),
			readFile(t, filepath.Join(parallel.Dest, filepath.FromSlash(rel))), rel)
	}
}

func TestRun_DocumentFailureIsContained(t *testing.T) {
	cfg := project(t)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Source, "broken.md"), []byte{0xff, 0xfe, 0xfd}, 0o600))

	summary, err := New(cfg).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, summary.Failures, 1)
	assert.Equal(t, "broken.md", summary.Failures[0].Document)
	assert.Equal(t, 4, summary.Converted)
	assert.NoFileExists(t, filepath.Join(cfg.Dest, "broken.md"))
}

func TestRun_FatalErrors(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(t *testing.T, cfg *config.Config)
		category derrors.ErrorCategory
	}{
		{
			name:     "missing mkdocs config",
			mutate:   func(_ *testing.T, cfg *config.Config) { cfg.MkDocsConfig += ".missing" },
			category: derrors.CategoryConfig,
		},
		{
			name:     "missing source",
			mutate:   func(_ *testing.T, cfg *config.Config) { cfg.Source += "-missing" },
			category: derrors.CategoryFileSystem,
		},
		{
			name:     "missing assets folder",
			mutate:   func(_ *testing.T, cfg *config.Config) { cfg.AssetsFolder += "-missing" },
			category: derrors.CategoryFileSystem,
		},
		{
			name: "no nav key",
			mutate: func(t *testing.T, cfg *config.Config) {
				require.NoError(t, os.WriteFile(cfg.MkDocsConfig, []byte("site_name: x\n"), 0o600))
			},
			category: derrors.CategoryNav,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := project(t)
			tt.mutate(t, cfg)

			_, err := New(cfg).Run(context.Background())
			require.Error(t, err)
			assert.True(t, derrors.HasCategory(err, tt.category), "got %v", err)
		})
	}
}

func TestRun_Canceled(t *testing.T) {
	cfg := project(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(cfg).Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

type countingRecorder struct {
	metrics.NoopRecorder
	mu        sync.Mutex
	documents map[metrics.DocumentOutcome]int
	workers   int
	runs      int
}

func (c *countingRecorder) IncDocument(o metrics.DocumentOutcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.documents[o]++
}

func (c *countingRecorder) SetWorkers(n int) { c.workers = n }

func (c *countingRecorder) ObserveRunDuration(time.Duration) { c.runs++ }

func TestRun_RecordsMetrics(t *testing.T) {
	cfg := project(t)
	cfg.Workers = 2
	rec := &countingRecorder{documents: map[metrics.DocumentOutcome]int{}}

	_, err := New(cfg, WithRecorder(rec)).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, rec.documents[metrics.DocumentMatched])
	assert.Equal(t, 1, rec.documents[metrics.DocumentUnmatched])
	assert.Equal(t, 2, rec.workers)
	assert.Equal(t, 1, rec.runs)
}
