package nav

import (
	"os"
	"regexp"
	"strings"

	derrors "git.home.luguber.info/inful/docmigrate/internal/foundation/errors"
)

var navKeyPattern = regexp.MustCompile(`(?m)^nav:[ \t]*\r?$`)

// ExtractBlock returns the lines following the top-level `nav:` key up to the next
// top-level key. A config without a nav key is a fatal error.
func ExtractBlock(config []byte) (string, error) {
	loc := navKeyPattern.FindIndex(config)
	if loc == nil {
		return "", derrors.NavError("no top-level 'nav:' key found in config").Build()
	}

	lines := strings.Split(string(config[loc[1]:]), "\n")
	block := make([]string, 0, len(lines))
	// lines[0] is the remainder of the nav: line itself.
	for _, line := range lines[1:] {
		if endsBlock(line) {
			break
		}
		block = append(block, line)
	}
	return strings.Join(block, "\n"), nil
}

// ParseFile reads an MkDocs config and parses its nav block against baseDir.
func ParseFile(configPath, baseDir string) (FileMetadata, SectionMetadata, error) {
	// #nosec G304 -- config path is supplied by the operator
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, nil, derrors.WrapError(err, derrors.CategoryConfig, "read mkdocs config").
			Fatal().
			WithContext("config", configPath).
			Build()
	}
	block, err := ExtractBlock(data)
	if err != nil {
		return nil, nil, err
	}
	files, sections := Parse(block, baseDir)
	return files, sections, nil
}

// endsBlock reports whether line starts the next top-level key. Sequence entries at
// column zero still belong to the nav, as do column-zero comments.
func endsBlock(line string) bool {
	line = strings.TrimRight(line, "\r")
	if strings.TrimSpace(line) == "" {
		return false
	}
	if line[0] == ' ' || line[0] == '\t' {
		return false
	}
	return !strings.HasPrefix(line, "- ") && !strings.HasPrefix(line, "#")
}
