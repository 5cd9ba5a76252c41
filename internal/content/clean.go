package content

import (
	"errors"
	"log/slog"
	"regexp"

	"git.home.luguber.info/inful/docmigrate/internal/frontmatter"
	"git.home.luguber.info/inful/docmigrate/internal/logfields"
)

var (
	breakPattern     = regexp.MustCompile(`(?i)<br\s*/?>`)
	attrListPattern  = regexp.MustCompile(`\{:\s*style="[^"]*"\s*\}`)
	rawMarkerPattern = regexp.MustCompile(`\{%-?\s*(?:end)?raw\s*-?%\}`)
)

// StripStaleMetadata removes one leading `---` or `+++` block and the blank lines
// after it. It returns the remaining text and the keys the block held. Keys that
// fail to decode are reported as nil; the block is removed regardless.
func StripStaleMetadata(text string) (string, []string) {
	block, body, had, err := frontmatter.Split([]byte(text))
	if err != nil {
		if errors.Is(err, frontmatter.ErrMissingClosingDelimiter) {
			slog.Debug("Unterminated front matter left in place")
		}
		return text, nil
	}
	if !had {
		return text, nil
	}
	keys, err := block.Keys()
	if err != nil {
		slog.Debug("Could not decode stale front matter", logfields.Error(err))
		keys = nil
	}
	return string(body), keys
}

// CleanMarkup deletes <br> tags, {: style="..."} attribute lists and
// {% raw %}/{% endraw %} markers. Text between raw markers is kept.
func CleanMarkup(text string) string {
	text = breakPattern.ReplaceAllString(text, "")
	text = attrListPattern.ReplaceAllString(text, "")
	return rawMarkerPattern.ReplaceAllString(text, "")
}
