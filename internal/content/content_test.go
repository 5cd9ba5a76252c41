package content

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docmigrate/internal/assets"
	"git.home.luguber.info/inful/docmigrate/internal/includes"
	"git.home.luguber.info/inful/docmigrate/internal/nav"
	"git.home.luguber.info/inful/docmigrate/internal/report"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

// fixture builds an asset root holding photos/My Pic.png and a snippet root
// holding present.yaml.
func fixture(t *testing.T) *Rewriter {
	t.Helper()
	assetRoot := t.TempDir()
	writeFile(t, filepath.Join(assetRoot, "photos", "My Pic.png"), "png")
	snippetRoot := t.TempDir()
	writeFile(t, filepath.Join(snippetRoot, "present.yaml"), "a: 1")

	resolver, err := assets.NewResolver(assetRoot)
	require.NoError(t, err)
	return NewRewriter(resolver, includes.NewRewriter(snippetRoot))
}

func TestStripStaleMetadata(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		wantText string
		wantKeys []string
	}{
		{"yaml block", "---\nhide:\n  - toc\n---\n\n# T\n", "# T\n", []string{"hide"}},
		{"toml block", "+++\ntitle = \"x\"\n+++\nBody", "Body", []string{"title"}},
		{"no block", "# T\n---\n", "# T\n---\n", nil},
		{"unterminated", "---\na: 1\n", "---\na: 1\n", nil},
		{"undecodable block still stripped", "---\n[unclosed\n---\nBody", "Body", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, keys := StripStaleMetadata(tt.in)
			assert.Equal(t, tt.wantText, text)
			assert.Equal(t, tt.wantKeys, keys)
		})
	}
}

func TestStripStaleMetadata_Idempotent(t *testing.T) {
	once, _ := StripStaleMetadata("---\na: 1\n---\n\nText\n")
	twice, keys := StripStaleMetadata(once)
	assert.Equal(t, once, twice)
	assert.Nil(t, keys)
}

func TestCleanMarkup(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"br variants", "a<br>b<BR/>c<br />d", "abcd"},
		{"style attribute list", "![x](y.png){: style=\"width:70%;\"}", "![x](y.png)"},
		{"raw markers keep content", "{% raw %}{{ value }}{% endraw %}", "{{ value }}"},
		{"trimmed raw markers", "{%- raw -%}x{%- endraw -%}", "x"},
		{"untouched text", "plain <b>bold</b>", "plain <b>bold</b>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanMarkup(tt.in))
		})
	}
}

func TestRewrite_AssetsAndIncludes(t *testing.T) {
	r := fixture(t)
	source := "---\nhide: [toc]\n---\n" +
		"![x](../pictures/My%20Pic.png)\n" +
		"<img src=\"img/My Pic.png\" width=\"5\">\n" +
		"![ext](https://example.com/a.png)\n" +
		"--8<-- \"cfg.yaml\"\n" +
		"{% include 'present.yaml' %}\n"

	res, err := r.Rewrite("guide/usage.md", []byte(source), nav.File{Title: "Usage", Weight: 30})
	require.NoError(t, err)

	want := "+++\ntitle = \"Usage\"\nlinkTitle = \"Usage\"\nweight = 30\n+++\n\n" +
		"![x](/photos/My%20Pic.png)\n" +
		"<img src=\"/photos/My%20Pic.png\" width=\"5\">\n" +
		"![ext](https://example.com/a.png)\n" +
		"{{< readfile file=/snippets/cfg.yaml code=\"true\" lang=\"yaml\" >}}\n" +
		"{{< readfile file=/snippets/present.yaml code=\"true\" lang=\"yaml\" >}}\n"
	assert.Equal(t, want, res.Text)
	assert.Equal(t, []string{"hide"}, res.DroppedKeys)

	wantRefs := []report.AssetRef{
		{Asset: "My Pic.png", Document: "guide/usage.md"},
		{Asset: "My Pic.png", Document: "guide/usage.md"},
	}
	if diff := cmp.Diff(wantRefs, res.AssetRefs); diff != "" {
		t.Errorf("AssetRefs mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []report.MissingReference{{Path: "cfg.yaml", Document: "guide/usage.md"}}, res.MissingSnippets)
	assert.Empty(t, res.MissingAssets)
	assert.Empty(t, res.Leftovers)
}

func TestRewrite_MissingAssetIsKeptAndReported(t *testing.T) {
	r := fixture(t)

	res, err := r.Rewrite("a.md", []byte("![m](img/missing%20one.png)\n"), nav.File{Title: "A", Weight: 10})
	require.NoError(t, err)

	assert.Contains(t, res.Text, "![m](img/missing%20one.png)")
	assert.Equal(t, []report.MissingReference{{Path: "missing one.png", Document: "a.md"}}, res.MissingAssets)
	assert.Equal(t, []report.LeftoverImage{{Document: "a.md", Target: "img/missing%20one.png"}}, res.Leftovers)
	assert.Empty(t, res.AssetRefs)
}

func TestRewrite_SkipsEmptyBasename(t *testing.T) {
	r := fixture(t)

	res, err := r.Rewrite("a.md", []byte("![dir](images/)\n"), nav.File{Title: "A", Weight: 10})
	require.NoError(t, err)
	assert.Contains(t, res.Text, "![dir](images/)")
	assert.Empty(t, res.MissingAssets)
}

func TestRewrite_InvalidUTF8(t *testing.T) {
	r := fixture(t)

	_, err := r.Rewrite("bad.md", []byte{0xff, 0xfe}, nav.File{Title: "Bad"})
	require.Error(t, err)
}

type panickingResolver struct{}

func (panickingResolver) Resolve(string) (string, bool) { panic("boom") }

func TestRewrite_PerMatchFailureIsContained(t *testing.T) {
	r := NewRewriter(panickingResolver{}, includes.NewRewriter(t.TempDir()))

	res, err := r.Rewrite("a.md", []byte("![a](a.png) text ![b](b.png)\n"), nav.File{Title: "A", Weight: 10})
	require.NoError(t, err)
	assert.Contains(t, res.Text, "![a](a.png) text ![b](b.png)")
}

type mapResolver map[string]string

func (m mapResolver) Resolve(name string) (string, bool) {
	p, ok := m[name]
	return p, ok
}

func TestRewrite_HTMLImageReplacesOnlySrc(t *testing.T) {
	r := NewRewriter(mapResolver{"img": "/x/img"}, includes.NewRewriter(t.TempDir()))

	res, err := r.Rewrite("a.md", []byte(`<img src="img"> and <img src='img'>`+"\n"), nav.File{Title: "A", Weight: 10})
	require.NoError(t, err)
	assert.Contains(t, res.Text, `<img src="/x/img"> and <img src='/x/img'>`)
	assert.Len(t, res.AssetRefs, 2)
}

func TestRewrite_HTMLImageSrcAfterOtherAttributes(t *testing.T) {
	r := fixture(t)

	src := `<img alt="a" src="img/My%20Pic.png"> <img class='c' src='My%20Pic.png'> <img data-src="My%20Pic.png">` + "\n"
	res, err := r.Rewrite("a.md", []byte(src), nav.File{Title: "A", Weight: 10})
	require.NoError(t, err)

	assert.Contains(t, res.Text, `<img alt="a" src="/photos/My%20Pic.png">`)
	assert.Contains(t, res.Text, `<img class='c' src='/photos/My%20Pic.png'>`)
	assert.Contains(t, res.Text, `<img data-src="My%20Pic.png">`)
	assert.Len(t, res.AssetRefs, 2)
	assert.Empty(t, res.MissingAssets)
}
