package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Formatter renders a run summary.
type Formatter interface {
	Format(w io.Writer, s *Summary) error
}

var (
	heavyRule = strings.Repeat("━", 70)
	lightRule = strings.Repeat("─", 70)
)

// TextFormatter renders the human-readable report.
type TextFormatter struct{}

// NewTextFormatter creates a text formatter.
func NewTextFormatter() *TextFormatter {
	return &TextFormatter{}
}

// Format writes the summary followed by one section per non-empty record list.
func (f *TextFormatter) Format(w io.Writer, s *Summary) error {
	lines := []string{
		"",
		heavyRule,
		"CONVERSION SUMMARY",
		heavyRule,
		fmt.Sprintf("Total files processed: %d", s.Converted),
		fmt.Sprintf("  - Files in mkdocs.yml nav: %d", s.Matched),
		fmt.Sprintf("  - Files NOT in mkdocs.yml nav: %d", s.UnmatchedConverted()),
		fmt.Sprintf("Section index files: %d", s.Sections),
		fmt.Sprintf("Errors: %d", len(s.Failures)),
	}
	if err := writeLines(w, lines...); err != nil {
		return err
	}

	if pairs := s.Assets.Pairs(); len(pairs) > 0 {
		if err := writeHeading(w, "ASSETS REPORT"); err != nil {
			return err
		}
		for _, p := range pairs {
			if _, err := fmt.Fprintf(w, "%s\t%s\n", p.Asset, p.Document); err != nil {
				return err
			}
		}
	}

	if len(s.Unmatched) > 0 {
		if err := writeHeading(w, "FILES NOT IN mkdocs.yml nav (migrated with higher weights)"); err != nil {
			return err
		}
		for _, u := range s.Unmatched {
			if _, err := fmt.Fprintf(w, "  %s (weight: %d)\n", u.Path, u.Weight); err != nil {
				return err
			}
		}
	}

	if len(s.MissingSnippets) > 0 {
		if err := writeHeading(w, "MISSING SNIPPETS"); err != nil {
			return err
		}
		for _, m := range s.MissingSnippets {
			if _, err := fmt.Fprintf(w, "  Snippet '%s' referenced in '%s' not found in %s\n", m.Path, m.Document, s.SnippetDest); err != nil {
				return err
			}
		}
	}

	if len(s.MissingAssets) > 0 {
		if err := writeHeading(w, "MISSING ASSETS"); err != nil {
			return err
		}
		for _, m := range s.MissingAssets {
			if _, err := fmt.Fprintf(w, "  Asset '%s' referenced in '%s' not found\n", m.Path, m.Document); err != nil {
				return err
			}
		}
	}

	if len(s.Leftovers) > 0 {
		if err := writeHeading(w, "RELATIVE IMAGES LEFT IN OUTPUT"); err != nil {
			return err
		}
		for _, l := range s.Leftovers {
			if _, err := fmt.Fprintf(w, "  %s: %s\n", l.Document, l.Target); err != nil {
				return err
			}
		}
	}

	if len(s.Failures) > 0 {
		if err := writeHeading(w, "ERRORS"); err != nil {
			return err
		}
		for _, e := range s.Failures {
			if _, err := fmt.Fprintf(w, "  %s: %s\n", e.Document, e.Error); err != nil {
				return err
			}
		}
	}

	return writeLines(w, "", "Conversion complete!")
}

func writeHeading(w io.Writer, title string) error {
	return writeLines(w, "", lightRule, title, lightRule)
}

func writeLines(w io.Writer, lines ...string) error {
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}

// JSONFormatter renders the summary as a single JSON document.
type JSONFormatter struct{}

// NewJSONFormatter creates a JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// JSONOutput is the JSON report structure.
type JSONOutput struct {
	RunID           string              `json:"run_id"`
	Source          string              `json:"source"`
	Dest            string              `json:"dest"`
	SnippetsCopied  bool                `json:"snippets_copied"`
	NavFiles        int                 `json:"nav_files"`
	Sections        int                 `json:"sections"`
	Converted       int                 `json:"converted"`
	Matched         int                 `json:"matched"`
	UnmatchedCount  int                 `json:"unmatched_count"`
	ErrorCount      int                 `json:"error_count"`
	DurationMS      int64               `json:"duration_ms"`
	Assets          []AssetRef          `json:"assets"`
	Unmatched       []UnmatchedDocument `json:"unmatched"`
	MissingSnippets []MissingReference  `json:"missing_snippets"`
	MissingAssets   []MissingReference  `json:"missing_assets"`
	Leftovers       []LeftoverImage     `json:"leftover_images"`
	Errors          []DocumentFailure   `json:"errors"`
}

// Format writes s as indented JSON. Empty lists are written as [].
func (f *JSONFormatter) Format(w io.Writer, s *Summary) error {
	out := JSONOutput{
		RunID:           s.RunID,
		Source:          s.Source,
		Dest:            s.Dest,
		SnippetsCopied:  s.SnippetsCopied,
		NavFiles:        s.NavFiles,
		Sections:        s.Sections,
		Converted:       s.Converted,
		Matched:         s.Matched,
		UnmatchedCount:  s.UnmatchedConverted(),
		ErrorCount:      len(s.Failures),
		DurationMS:      s.Duration.Milliseconds(),
		Assets:          nonNil(s.Assets.Pairs()),
		Unmatched:       nonNil(s.Unmatched),
		MissingSnippets: nonNil(s.MissingSnippets),
		MissingAssets:   nonNil(s.MissingAssets),
		Leftovers:       nonNil(s.Leftovers),
		Errors:          nonNil(s.Failures),
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// NewFormatter creates the formatter for format ("text" or "json").
func NewFormatter(format string) Formatter {
	switch format {
	case "json":
		return NewJSONFormatter()
	default:
		return NewTextFormatter()
	}
}
