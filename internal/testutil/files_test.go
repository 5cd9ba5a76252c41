package testutil

import (
	"testing"
)

func TestWriteTreeAndAssertions(t *testing.T) {
	root := t.TempDir()
	WriteTree(t, root, map[string]string{
		"a.md":         "alpha\n",
		"nested/b.md":  "beta\n",
		"nested/c.txt": "",
	})

	NewFileAssertions(t, root).
		AssertFileExists("a.md").
		AssertFileExists("nested/b.md").
		AssertFileEquals("nested/c.txt", "").
		AssertFileContains("a.md", "alp").
		AssertNotExists("missing.md")
}
