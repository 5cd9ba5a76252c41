package frontmatter

import (
	"fmt"
	"strings"
)

// RenderPage renders the front matter of a content page, followed by the blank
// line that separates it from the body. Titles are written as-is inside double
// quotes.
func RenderPage(title string, weight int) string {
	var b strings.Builder
	b.WriteString(string(TOML) + "\n")
	fmt.Fprintf(&b, "title = \"%s\"\n", title)
	fmt.Fprintf(&b, "linkTitle = \"%s\"\n", title)
	fmt.Fprintf(&b, "weight = %d\n", weight)
	b.WriteString(string(TOML) + "\n\n")
	return b.String()
}

// RenderIndex renders the complete content of a section's _index.md.
func RenderIndex(title string, weight int) string {
	var b strings.Builder
	b.WriteString(string(TOML) + "\n")
	fmt.Fprintf(&b, "title = \"%s\"\n", title)
	fmt.Fprintf(&b, "weight = %d\n", weight)
	b.WriteString(string(TOML) + "\n")
	return b.String()
}
