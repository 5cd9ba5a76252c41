// Package report collects the per-run tracking records of a migration and renders
// the end-of-run summary.
package report

import (
	"sort"
	"time"

	"git.home.luguber.info/inful/docmigrate/internal/util/sets"
)

// AssetRef records that Document references the asset file named Asset.
// Asset is the URL-decoded filename.
type AssetRef struct {
	Asset    string `json:"asset"`
	Document string `json:"document"`
}

// AssetUsage maps a decoded asset filename to the documents that reference it.
type AssetUsage map[string]sets.Set[string]

// Add records one reference.
func (u AssetUsage) Add(asset, document string) {
	docs, ok := u[asset]
	if !ok {
		docs = sets.New[string]()
		u[asset] = docs
	}
	docs.Add(document)
}

// AddRefs records every ref.
func (u AssetUsage) AddRefs(refs []AssetRef) {
	for _, r := range refs {
		u.Add(r.Asset, r.Document)
	}
}

// Pairs flattens the usage into (asset, document) pairs sorted by asset, then
// document.
func (u AssetUsage) Pairs() []AssetRef {
	assets := make([]string, 0, len(u))
	for a := range u {
		assets = append(assets, a)
	}
	sort.Strings(assets)

	var out []AssetRef
	for _, a := range assets {
		for _, d := range sets.Sorted(u[a]) {
			out = append(out, AssetRef{Asset: a, Document: d})
		}
	}
	return out
}

// MissingReference is a referenced file that could not be found.
type MissingReference struct {
	Path     string `json:"path"`
	Document string `json:"document"`
}

// UnmatchedDocument is a document found on disk but absent from the nav.
type UnmatchedDocument struct {
	Path   string `json:"path"`
	Weight int    `json:"weight"`
}

// LeftoverImage is a relative image reference still present after rewriting.
type LeftoverImage struct {
	Document string `json:"document"`
	Target   string `json:"target"`
}

// DocumentFailure is a document that could not be converted.
type DocumentFailure struct {
	Document string `json:"document"`
	Error    string `json:"error"`
}

// Summary is everything a run reports. Slices are in document order.
type Summary struct {
	RunID           string
	Source          string
	Dest            string
	SnippetDest     string
	SnippetsCopied  bool
	NavFiles        int
	Sections        int
	Converted       int
	Matched         int
	Unmatched       []UnmatchedDocument
	Failures        []DocumentFailure
	Assets          AssetUsage
	MissingAssets   []MissingReference
	MissingSnippets []MissingReference
	Leftovers       []LeftoverImage
	Duration        time.Duration
}

// NewSummary returns an empty summary for run id.
func NewSummary(runID string) *Summary {
	return &Summary{RunID: runID, Assets: AssetUsage{}}
}

// UnmatchedConverted is the number of converted documents that were not in the nav.
func (s *Summary) UnmatchedConverted() int {
	return s.Converted - s.Matched
}

// HasAdvisories reports whether the run produced anything a reader should check.
func (s *Summary) HasAdvisories() bool {
	return len(s.MissingAssets) > 0 || len(s.MissingSnippets) > 0 || len(s.Leftovers) > 0
}
