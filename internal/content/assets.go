package content

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/docmigrate/internal/assets"
	"git.home.luguber.info/inful/docmigrate/internal/logfields"
	"git.home.luguber.info/inful/docmigrate/internal/report"
)

// imagePattern matches one image syntax. target is the index of the capture
// group holding the reference; only that group is replaced.
type imagePattern struct {
	re     *regexp.Regexp
	target int
}

// Applied in order, each over the output of the previous one. The src of an
// HTML image may follow other attributes but must be preceded by whitespace,
// so data-src is not matched.
var imagePatterns = []imagePattern{
	{regexp.MustCompile(`!\[([^\]]*)\]\(([^)]+)\)`), 2},
	{regexp.MustCompile(`<img\b[^>]*?\ssrc="([^"]+)"`), 1},
	{regexp.MustCompile(`<img\b[^>]*?\ssrc='([^']+)'`), 1},
}

// assetPass rewrites the image references of one document.
type assetPass struct {
	resolver AssetResolver
	document string
	refs     []report.AssetRef
	missing  []report.MissingReference
}

func (a *assetPass) run(text string) string {
	for _, p := range imagePatterns {
		text = p.re.ReplaceAllStringFunc(text, func(match string) string {
			return a.replace(p, match)
		})
	}
	return text
}

// replace handles one match. Any failure keeps the match unchanged.
func (a *assetPass) replace(p imagePattern, match string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("Error processing asset reference",
				logfields.Document(a.document),
				slog.String("match", match),
				logfields.Error(fmt.Errorf("%v", r)))
			out = match
		}
	}()

	loc := p.re.FindStringSubmatchIndex(match)
	start, end := loc[2*p.target], loc[2*p.target+1]
	target := match[start:end]

	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		return match
	}
	name := baseName(target)
	if strings.TrimSpace(name) == "" {
		return match
	}

	decoded := assets.DecodeName(name)
	resolved, ok := a.resolver.Resolve(name)
	if !ok {
		slog.Warn("Asset not found in assets folder",
			logfields.Asset(decoded),
			logfields.Document(a.document))
		a.missing = append(a.missing, report.MissingReference{Path: decoded, Document: a.document})
		return match
	}

	a.refs = append(a.refs, report.AssetRef{Asset: decoded, Document: a.document})
	return match[:start] + resolved + match[end:]
}

// baseName returns the part of a reference after its last slash.
func baseName(ref string) string {
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		return ref[i+1:]
	}
	return ref
}
