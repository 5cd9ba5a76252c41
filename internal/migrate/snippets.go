package migrate

import (
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/docmigrate/internal/util/fsutil"
)

// replaceSnippetDirs copies every entry of src into dst. Directories already
// present in dst are removed first so renamed or deleted snippets do not linger.
func replaceSnippetDirs(src, dst string) error {
	if err := os.MkdirAll(dst, 0o750); err != nil {
		return err
	}
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	for _, e := range entries {
		from := filepath.Join(src, e.Name())
		to := filepath.Join(dst, e.Name())
		info, err := os.Stat(from)
		if err != nil {
			return err
		}
		if info.IsDir() {
			if err := os.RemoveAll(to); err != nil {
				return err
			}
			if err := fsutil.CopyDir(from, to); err != nil {
				return err
			}
			continue
		}
		if err := fsutil.CopyFile(from, to, info.Mode().Perm()); err != nil {
			return err
		}
	}
	return nil
}
