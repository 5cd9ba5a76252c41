package nav

import (
	"path"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var separatorReplacer = strings.NewReplacer("-", " ", "_", " ")

// TitleFromFilename derives a display title from a document path:
// "guides/getting-started.md" becomes "Getting Started".
func TitleFromFilename(p string) string {
	base := path.Base(p)
	name := strings.TrimSuffix(base, path.Ext(base))
	// Casers carry state; one per call keeps this safe for concurrent callers.
	return cases.Title(language.English).String(separatorReplacer.Replace(name))
}
