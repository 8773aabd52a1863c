package symstore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTreeBuilderRoundTrip(t *testing.T) {
	b := NewTreeBuilder()
	callLine := uint32(42)
	b.AddRange(0x1000, 0x1010, "inner", "inner.c", "outer.c", &callLine, 0, []LineEntry{
		{Offset: 0, Line: 10},
		{Offset: 4, Line: 12},
	})
	b.AddRange(0x1000, 0x1010, "outer", "outer.c", "", nil, 1, nil)
	require.Equal(t, 2, b.Len())

	buf := b.Encode()
	tree, err := OpenSymTree(buf)
	require.NoError(t, err)
	require.Equal(t, 2, tree.NumRanges())

	got, err := tree.QueryPoint(0x1004)
	require.NoError(t, err)
	require.Len(t, got, 2)

	sorted := SortAndDedupByDepth(got)
	require.Len(t, sorted, 2)
	require.Equal(t, uint16(0), sorted[0].Depth)
	require.Equal(t, "inner", sorted[0].Func)
	require.Equal(t, uint32(42), *sorted[0].CallLine)
	require.Equal(t, uint16(1), sorted[1].Depth)
	require.Equal(t, "outer", sorted[1].Func)

	line, found := sorted[0].LineForOffset(0x1004 - sorted[0].RangeStart)
	require.True(t, found)
	require.Equal(t, uint32(12), line)
}

func TestSortAndDedupByDepthKeepsFirstPerDepth(t *testing.T) {
	in := []ResolvedSymRange{
		{Depth: 1, Func: "a"},
		{Depth: 0, Func: "b"},
		{Depth: 1, Func: "c"}, // duplicate depth, dropped
	}
	out := SortAndDedupByDepth(in)
	require.Len(t, out, 2)
	require.Equal(t, "b", out[0].Func)
	require.Equal(t, "a", out[1].Func)
}

func TestLineForOffsetEmptyTable(t *testing.T) {
	r := ResolvedSymRange{}
	_, found := r.LineForOffset(5)
	require.False(t, found)
}
