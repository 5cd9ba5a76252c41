// Package frontmatter splits existing front matter off documents and renders the
// TOML front matter Hugo pages are written with.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Delimiter is the fence line of a front matter block.
type Delimiter string

const (
	YAML Delimiter = "---"
	TOML Delimiter = "+++"
)

// Block is a front matter block without its delimiter lines.
type Block struct {
	Delimiter Delimiter
	Raw       []byte
}

// ErrMissingClosingDelimiter indicates the document opened a front matter block
// that is never closed.
var ErrMissingClosingDelimiter = errors.New("front matter start delimiter found but closing delimiter is missing")

// Split separates a leading `---` or `+++` block from the body. Delimiter lines may
// carry trailing whitespace. Blank lines directly after the closing delimiter are
// dropped with the block.
//
// If the document does not open with a delimiter line, had is false and body is
// the full input.
func Split(content []byte) (block Block, body []byte, had bool, err error) {
	first, rest, _ := cutLine(content)
	delim, isDelim := delimiterOf(first)
	if !isDelim {
		return Block{}, content, false, nil
	}

	start := len(content) - len(rest)
	pos := start
	for pos < len(content) {
		line, next, _ := cutLine(content[pos:])
		if d, ok := delimiterOf(line); ok && d == delim {
			body = skipBlankLines(next)
			return Block{Delimiter: delim, Raw: content[start:pos]}, body, true, nil
		}
		pos = len(content) - len(next)
	}
	return Block{}, content, false, ErrMissingClosingDelimiter
}

// Keys decodes the block and returns its top-level keys, sorted.
func (b Block) Keys() ([]string, error) {
	fields := map[string]any{}
	if len(bytes.TrimSpace(b.Raw)) > 0 {
		var err error
		switch b.Delimiter {
		case TOML:
			err = toml.Unmarshal(b.Raw, &fields)
		default:
			err = yaml.Unmarshal(b.Raw, &fields)
		}
		if err != nil {
			return nil, fmt.Errorf("decode %s front matter: %w", b.Delimiter, err)
		}
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// cutLine returns the first line of b without its line terminator, the remainder
// after it, and whether a terminator was found.
func cutLine(b []byte) (line, rest []byte, found bool) {
	line, rest, found = bytes.Cut(b, []byte("\n"))
	return bytes.TrimSuffix(line, []byte("\r")), rest, found
}

func delimiterOf(line []byte) (Delimiter, bool) {
	switch string(bytes.TrimRight(line, " \t\r")) {
	case string(YAML):
		return YAML, true
	case string(TOML):
		return TOML, true
	}
	return "", false
}

func skipBlankLines(b []byte) []byte {
	for len(b) > 0 {
		line, rest, found := cutLine(b)
		if !found || len(bytes.TrimSpace(line)) > 0 {
			return b
		}
		b = rest
	}
	return b
}
