package nav

import (
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/docmigrate/internal/logfields"
)

const maxDepth = 3

var (
	headingPattern    = regexp.MustCompile(`^-\s+(.+?):\s*$`)
	namedLeafPattern  = regexp.MustCompile(`^-\s+(.+?):\s+(.+\.md)`)
	quotedLeafPattern = regexp.MustCompile(`^-\s+["'](.+\.md)["']`)
)

type frameKind int

const (
	frameSection frameKind = iota
	frameSubsection
	frameLeaf
	frameIgnored
)

// frame is one open nesting level: the indent width of the entry that opened it
// and what kind of entry that was.
type frame struct {
	indent int
	kind   frameKind
}

type parser struct {
	baseDir  string
	files    FileMetadata
	sections SectionMetadata
	stack    []frame

	section          string
	subsection       string
	sectionWeight    int
	subsectionWeight int
	itemWeight       int
}

// Parse walks a nav block and returns metadata for every leaf whose document exists
// under baseDir, plus the section metadata of every directory a leaf lives in.
//
// Malformed lines are skipped; Parse never fails. The block ends at the first
// non-indented line that is not a sequence entry.
func Parse(block string, baseDir string) (FileMetadata, SectionMetadata) {
	p := &parser{
		baseDir:  baseDir,
		files:    FileMetadata{},
		sections: SectionMetadata{},
	}

	for _, raw := range strings.Split(block, "\n") {
		line := strings.TrimRight(raw, "\r")
		if endsBlock(line) {
			break
		}
		text := strings.TrimSpace(line)
		if text == "" || strings.HasPrefix(text, "#") || !strings.HasPrefix(text, "- ") {
			continue
		}
		p.entry(indentOf(line), text)
	}
	return p.files, p.sections
}

func indentOf(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}

// entry places a sequence entry in the hierarchy and dispatches on its level.
func (p *parser) entry(indent int, text string) {
	for len(p.stack) > 0 && p.stack[len(p.stack)-1].indent >= indent {
		p.stack = p.stack[:len(p.stack)-1]
	}
	level := len(p.stack) + 1

	if level > maxDepth {
		slog.Debug("Skipping nav entry nested too deeply", slog.String("entry", text), slog.Int("level", level))
		return
	}
	if level > 1 {
		if parent := p.stack[len(p.stack)-1].kind; parent == frameLeaf || parent == frameIgnored {
			slog.Debug("Skipping nav entry nested under a leaf", slog.String("entry", text))
			return
		}
	}

	var kind frameKind
	switch level {
	case 1:
		kind = p.topLevel(text)
	case 2:
		kind = p.secondLevel(text)
	default:
		kind = p.thirdLevel(text)
	}
	p.stack = append(p.stack, frame{indent: indent, kind: kind})
}

func (p *parser) topLevel(text string) frameKind {
	p.sectionWeight += WeightStep
	p.itemWeight = p.sectionWeight
	p.subsectionWeight = 0

	if name, ok := parseHeading(text); ok {
		p.section = name
		p.subsection = ""
		return frameSection
	}
	if title, file, ok := parseNamedLeaf(text); ok {
		p.section = title
		p.subsection = ""
		p.recordDir(file, p.sectionWeight)
		p.addFile(file, title)
		return frameLeaf
	}
	return frameIgnored
}

func (p *parser) secondLevel(text string) frameKind {
	p.itemWeight += WeightStep
	// A sibling of a subsection heading closes that subsection.
	p.subsection = ""

	if name, ok := parseHeading(text); ok {
		p.subsection = name
		p.subsectionWeight = p.itemWeight
		return frameSubsection
	}
	if title, file, ok := parseLeaf(text); ok {
		p.recordDir(file, p.sectionWeight)
		p.addFile(file, title)
		return frameLeaf
	}
	return frameIgnored
}

func (p *parser) thirdLevel(text string) frameKind {
	p.itemWeight += WeightStep

	if title, file, ok := parseLeaf(text); ok {
		p.recordDir(file, p.subsectionWeight)
		p.addFile(file, title)
		return frameLeaf
	}
	return frameIgnored
}

// recordDir captures section metadata for file's directory on first sight.
func (p *parser) recordDir(file string, weight int) {
	dir := path.Dir(file)
	if dir == "." || dir == "/" {
		return
	}
	if _, seen := p.sections[dir]; seen {
		return
	}
	title := p.subsection
	if title == "" {
		title = p.section
	}
	p.sections[dir] = Section{Title: title, Weight: weight}
}

// addFile records a leaf if its document exists. Later entries for the same path win.
func (p *parser) addFile(file, title string) {
	full := filepath.Join(p.baseDir, filepath.FromSlash(file))
	if _, err := os.Stat(full); err != nil {
		slog.Debug("Nav entry references missing document", logfields.Document(file))
		return
	}
	p.files[file] = File{
		Title:      title,
		Section:    p.section,
		Subsection: p.subsection,
		Weight:     p.itemWeight,
	}
}

func parseHeading(text string) (string, bool) {
	m := headingPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return unquote(m[1]), true
}

func parseNamedLeaf(text string) (title, file string, ok bool) {
	m := namedLeafPattern.FindStringSubmatch(text)
	if m == nil || strings.Contains(m[2], "://") {
		return "", "", false
	}
	return unquote(m[1]), cleanPath(unquote(m[2])), true
}

// parseLeaf accepts both leaf forms allowed below the top level.
func parseLeaf(text string) (title, file string, ok bool) {
	if title, file, ok = parseNamedLeaf(text); ok {
		return title, file, true
	}
	m := quotedLeafPattern.FindStringSubmatch(text)
	if m == nil {
		return "", "", false
	}
	file = cleanPath(m[1])
	return TitleFromFilename(file), file, true
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return strings.TrimLeft(s, `"'`)
}

func cleanPath(p string) string {
	return path.Clean(strings.TrimPrefix(p, "./"))
}
