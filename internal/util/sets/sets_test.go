package sets

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSet_AddHasSorted(t *testing.T) {
	s := New("b.md")
	s.Add("a.md")
	s.Add("b.md")

	require.True(t, s.Has("a.md"))
	require.False(t, s.Has("c.md"))
	require.Equal(t, 2, s.Len())
	require.Equal(t, []string{"a.md", "b.md"}, Sorted(s))
}
