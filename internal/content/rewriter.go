package content

import (
	"log/slog"
	"unicode/utf8"

	derrors "git.home.luguber.info/inful/docmigrate/internal/foundation/errors"
	"git.home.luguber.info/inful/docmigrate/internal/frontmatter"
	"git.home.luguber.info/inful/docmigrate/internal/includes"
	"git.home.luguber.info/inful/docmigrate/internal/logfields"
	"git.home.luguber.info/inful/docmigrate/internal/markdown"
	"git.home.luguber.info/inful/docmigrate/internal/nav"
	"git.home.luguber.info/inful/docmigrate/internal/report"
)

// AssetResolver maps an asset filename to its site-absolute path.
type AssetResolver interface {
	Resolve(name string) (string, bool)
}

// IncludeRewriter replaces include directives with shortcodes.
type IncludeRewriter interface {
	Rewrite(text string) (string, []includes.Directive)
}

// Result is one converted document and its tracking records.
type Result struct {
	Text            string
	DroppedKeys     []string
	AssetRefs       []report.AssetRef
	MissingAssets   []report.MissingReference
	MissingSnippets []report.MissingReference
	Leftovers       []report.LeftoverImage
}

// Rewriter converts documents. It holds no per-document state and can be shared
// between workers.
type Rewriter struct {
	assets   AssetResolver
	includes IncludeRewriter
}

// NewRewriter returns a Rewriter using the given collaborators.
func NewRewriter(resolver AssetResolver, inc IncludeRewriter) *Rewriter {
	return &Rewriter{assets: resolver, includes: inc}
}

// Rewrite converts source, the raw content of document, into a Hugo page with
// meta's title and weight. document labels every tracking record.
func (r *Rewriter) Rewrite(document string, source []byte, meta nav.File) (Result, error) {
	if !utf8.Valid(source) {
		return Result{}, derrors.ConvertError("document is not valid UTF-8").
			WithContext("document", document).
			Build()
	}

	text, dropped := StripStaleMetadata(string(source))
	if len(dropped) > 0 {
		slog.Debug("Dropped stale front matter",
			logfields.Document(document),
			slog.Any("keys", dropped))
	}
	text = CleanMarkup(text)

	pass := &assetPass{resolver: r.assets, document: document}
	text = pass.run(text)

	text, directives := r.includes.Rewrite(text)
	var missingSnippets []report.MissingReference
	for _, d := range directives {
		if d.Exists {
			continue
		}
		slog.Debug("Snippet not found", logfields.Snippet(d.Path), logfields.Document(document))
		missingSnippets = append(missingSnippets, report.MissingReference{Path: d.Path, Document: document})
	}

	var leftovers []report.LeftoverImage
	for _, target := range markdown.RelativeImages([]byte(text)) {
		leftovers = append(leftovers, report.LeftoverImage{Document: document, Target: target})
	}

	return Result{
		Text:            frontmatter.RenderPage(meta.Title, meta.Weight) + text,
		DroppedKeys:     dropped,
		AssetRefs:       pass.refs,
		MissingAssets:   pass.missing,
		MissingSnippets: missingSnippets,
		Leftovers:       leftovers,
	}, nil
}
