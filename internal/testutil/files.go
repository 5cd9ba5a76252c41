// Package testutil holds filesystem fixtures and assertions shared by tests.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteFile writes content to root/rel, creating parent directories.
func WriteFile(t testing.TB, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(p), err)
	}
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
}

// WriteTree writes every rel -> content entry below root.
func WriteTree(t testing.TB, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		WriteFile(t, root, rel, content)
	}
}

// FileAssertions checks file system state below a base directory.
type FileAssertions struct {
	t       testing.TB
	baseDir string
}

// NewFileAssertions creates a new file assertions helper.
func NewFileAssertions(t testing.TB, baseDir string) *FileAssertions {
	return &FileAssertions{t: t, baseDir: baseDir}
}

func (fa *FileAssertions) path(rel string) string {
	return filepath.Join(fa.baseDir, filepath.FromSlash(rel))
}

// AssertFileExists validates that a regular file exists.
func (fa *FileAssertions) AssertFileExists(rel string) *FileAssertions {
	fa.t.Helper()
	info, err := os.Stat(fa.path(rel))
	switch {
	case err != nil:
		fa.t.Errorf("Expected file to exist: %s (%v)", rel, err)
	case info.IsDir():
		fa.t.Errorf("Expected %s to be a file, but it's a directory", rel)
	}
	return fa
}

// AssertNotExists validates that nothing exists at rel.
func (fa *FileAssertions) AssertNotExists(rel string) *FileAssertions {
	fa.t.Helper()
	if _, err := os.Stat(fa.path(rel)); !os.IsNotExist(err) {
		fa.t.Errorf("Expected %s not to exist", rel)
	}
	return fa
}

// AssertFileContains validates that a file contains expected content.
func (fa *FileAssertions) AssertFileContains(rel, expected string) *FileAssertions {
	fa.t.Helper()
	content, ok := fa.read(rel)
	if ok && !strings.Contains(content, expected) {
		fa.t.Errorf("Expected file %s to contain %q\nActual content:\n%s", rel, expected, content)
	}
	return fa
}

// AssertFileEquals validates a file's full content.
func (fa *FileAssertions) AssertFileEquals(rel, expected string) *FileAssertions {
	fa.t.Helper()
	content, ok := fa.read(rel)
	if ok && content != expected {
		fa.t.Errorf("File %s mismatch\nwant:\n%s\ngot:\n%s", rel, expected, content)
	}
	return fa
}

func (fa *FileAssertions) read(rel string) (string, bool) {
	fa.t.Helper()
	// #nosec G304 - test helper, paths are controlled by test code
	content, err := os.ReadFile(fa.path(rel))
	if err != nil {
		fa.t.Errorf("Failed to read file %s: %v", rel, err)
		return "", false
	}
	return string(content), true
}
