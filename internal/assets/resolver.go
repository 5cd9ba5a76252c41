// Package assets locates referenced images under the destination asset root.
package assets

import (
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	derrors "git.home.luguber.info/inful/docmigrate/internal/foundation/errors"
)

type entry struct {
	order int
	rel   string
}

// Resolver maps asset filenames to site-absolute paths under an asset root.
//
// The tree is enumerated once, in filepath.WalkDir order (lexical within each
// directory, depth first). When several files share a basename, the one visited
// first wins, so results are stable for an unchanged tree. A Resolver is read-only
// after construction and safe for concurrent use.
type Resolver struct {
	root  string
	index map[string]entry
}

// NewResolver indexes every regular file below root.
func NewResolver(root string) (*Resolver, error) {
	r := &Resolver{root: root, index: map[string]entry{}}
	order := 0
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !isRegular(p, d) {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		if _, seen := r.index[d.Name()]; !seen {
			r.index[d.Name()] = entry{order: order, rel: filepath.ToSlash(rel)}
		}
		order++
		return nil
	})
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryFileSystem, "index asset folder").
			Fatal().
			WithContext("path", root).
			Build()
	}
	return r, nil
}

func isRegular(p string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}

// Len returns the number of distinct basenames indexed.
func (r *Resolver) Len() int { return len(r.index) }

// Resolve finds the first file whose basename equals name or its URL-decoded form.
// The returned path is rooted at "/" relative to the asset root, with spaces encoded
// as %20. The boolean is false when nothing matches.
func (r *Resolver) Resolve(name string) (string, bool) {
	match, found := r.index[name]
	if decoded := DecodeName(name); decoded != name {
		if alt, ok := r.index[decoded]; ok && (!found || alt.order < match.order) {
			match, found = alt, true
		}
	}
	if !found {
		return "", false
	}
	return "/" + strings.ReplaceAll(match.rel, " ", "%20"), true
}

// DecodeName URL-decodes an asset filename. Malformed escapes leave the name as is.
func DecodeName(name string) string {
	decoded, err := url.PathUnescape(name)
	if err != nil {
		return name
	}
	return decoded
}
