// Package includes rewrites legacy snippet include syntaxes into Hugo readfile
// shortcodes and reports which referenced snippets are missing.
package includes

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// VirtualRoot is the project-root-relative folder the readfile shortcode reads
// snippets from. Snippet files must be placed there, not under content/.
const VirtualRoot = "/snippets"

// Syntax identifies which legacy construct a directive was written in.
type Syntax string

const (
	SyntaxFencedInclude Syntax = "fenced_include" // ```yaml fence wrapping a single include
	SyntaxInclude       Syntax = "include"        // {% include "path" %}
	SyntaxSnippetMarker Syntax = "snippet_marker" // --8<-- "path"
)

// Directive is one include found in a document.
type Directive struct {
	Syntax Syntax
	Start  int // byte offset of the match in the scanned text
	End    int
	Path   string
	Exists bool // Path exists under the snippet destination root
}

type pattern struct {
	syntax Syntax
	re     *regexp.Regexp
}

// Patterns are tried in this order so that a fence is consumed before the include
// it wraps.
var patterns = []pattern{
	{SyntaxFencedInclude, regexp.MustCompile("``` ?yaml\\s*\\n\\s*\\{%\\s*include\\s+[\"']([^\"']+)[\"']\\s*%\\}[^\\n]*\\n\\s*```")},
	{SyntaxInclude, regexp.MustCompile(`\{%\s*include\s+["']([^"']+)["']\s*%\}`)},
	{SyntaxSnippetMarker, regexp.MustCompile(`--8<--\s+"([^"]+)"`)},
}

// Rewriter detects include directives and renders their replacement.
type Rewriter struct {
	snippetRoot string
}

// NewRewriter returns a Rewriter that checks references against snippetRoot.
func NewRewriter(snippetRoot string) *Rewriter {
	return &Rewriter{snippetRoot: snippetRoot}
}

// Collect finds every directive in text, ordered by position. Matches of a
// lower-priority syntax that overlap an already collected match are dropped,
// which gives the same result as applying the three substitutions in sequence.
func (r *Rewriter) Collect(text string) []Directive {
	var found []Directive
	for _, p := range patterns {
		for _, loc := range p.re.FindAllStringSubmatchIndex(text, -1) {
			start, end := loc[0], loc[1]
			if overlaps(found, start, end) {
				continue
			}
			path := text[loc[2]:loc[3]]
			found = append(found, Directive{
				Syntax: p.syntax,
				Start:  start,
				End:    end,
				Path:   path,
				Exists: r.exists(path),
			})
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].Start < found[j].Start })
	return found
}

// Apply replaces every directive in text with its shortcode. directives must come
// from Collect on the same text.
func Apply(text string, directives []Directive) string {
	if len(directives) == 0 {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, d := range directives {
		b.WriteString(text[last:d.Start])
		b.WriteString(Shortcode(d.Path))
		last = d.End
	}
	b.WriteString(text[last:])
	return b.String()
}

// Rewrite collects and applies in one step.
func (r *Rewriter) Rewrite(text string) (string, []Directive) {
	directives := r.Collect(text)
	return Apply(text, directives), directives
}

// Shortcode renders the readfile directive for a snippet path. The path is kept
// as written, subdirectories included.
func Shortcode(path string) string {
	return fmt.Sprintf(`{{< readfile file=%s/%s code="true" lang="yaml" >}}`, VirtualRoot, path)
}

func (r *Rewriter) exists(path string) bool {
	_, err := os.Stat(filepath.Join(r.snippetRoot, filepath.FromSlash(path)))
	return err == nil
}

func overlaps(found []Directive, start, end int) bool {
	for _, d := range found {
		if start < d.End && d.Start < end {
			return true
		}
	}
	return false
}
