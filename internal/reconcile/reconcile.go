// Package reconcile finds documents that exist on disk but are missing from the
// nav and gives them metadata that orders them after every nav entry.
package reconcile

import (
	"os"
	"path"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	derrors "git.home.luguber.info/inful/docmigrate/internal/foundation/errors"
	"git.home.luguber.info/inful/docmigrate/internal/nav"
)

// UnmatchedOffset separates the highest nav weight from the first unmatched document.
const UnmatchedOffset = 1000

// Options controls the document inventory.
type Options struct {
	// Exclude holds doublestar patterns matched against slash-separated paths
	// relative to the source root.
	Exclude []string
}

// Unmatched is a document that the nav does not list.
type Unmatched struct {
	Path   string
	Weight int
}

// Inventory lists every document below root as sorted slash-separated relative
// paths, minus those matching an exclude pattern.
func Inventory(root string, opts Options) ([]string, error) {
	for _, p := range opts.Exclude {
		if !doublestar.ValidatePattern(p) {
			return nil, derrors.ValidationError("invalid exclude pattern").
				WithContext("pattern", p).
				Build()
		}
	}

	matches, err := doublestar.Glob(os.DirFS(root), "**/*"+nav.DocumentExtension, doublestar.WithFilesOnly())
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryFileSystem, "scan source directory").
			Fatal().
			WithContext("path", root).
			Build()
	}

	docs := make([]string, 0, len(matches))
	for _, m := range matches {
		if excluded(m, opts.Exclude) {
			continue
		}
		docs = append(docs, m)
	}
	sort.Strings(docs)
	return docs, nil
}

func excluded(p string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, p); ok {
			return true
		}
	}
	return false
}

// Reconcile returns a copy of files extended with an entry for every document in
// docs that files lacks, and the list of those documents. Unmatched documents are
// weighted in path order, starting at UnmatchedOffset above the highest nav weight
// and stepping by nav.WeightStep; their titles come from the filename.
func Reconcile(files nav.FileMetadata, docs []string) (nav.FileMetadata, []Unmatched) {
	out := make(nav.FileMetadata, len(files))
	for k, v := range files {
		out[k] = v
	}

	sorted := append([]string(nil), docs...)
	sort.Strings(sorted)

	weight := files.MaxWeight() + UnmatchedOffset
	var unmatched []Unmatched
	for _, doc := range sorted {
		if _, ok := out[doc]; ok {
			continue
		}
		weight += nav.WeightStep
		out[doc] = nav.File{
			Title:  nav.TitleFromFilename(path.Base(doc)),
			Weight: weight,
		}
		unmatched = append(unmatched, Unmatched{Path: doc, Weight: weight})
	}
	return out, unmatched
}
