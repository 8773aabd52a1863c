package intervaltree

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func bruteForcePoint(elems []Elem, p uint64) [][]byte {
	var out [][]byte
	for _, e := range elems {
		if e.Range.Contains(p) {
			out = append(out, e.Value)
		}
	}
	return out
}

func bruteForceOverlap(elems []Elem, r Range) [][]byte {
	var out [][]byte
	for _, e := range elems {
		if e.Range.Overlaps(r) {
			out = append(out, e.Value)
		}
	}
	return out
}

func sortedStrings(bs [][]byte) []string {
	out := make([]string, len(bs))
	for i, b := range bs {
		out[i] = string(b)
	}
	sort.Strings(out)
	return out
}

func TestIntervalTreeMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	var elems []Elem
	for i := 0; i < 200; i++ {
		start := uint64(rng.Intn(1000))
		end := start + uint64(rng.Intn(50)+1)
		elems = append(elems, Elem{Range: Range{Start: start, End: end}, Value: []byte{byte(i), byte(i >> 8)}})
	}
	tree := Build(elems)

	for i := 0; i < 500; i++ {
		p := uint64(rng.Intn(1100))
		got := sortedStrings(tree.QueryPoint(p))
		want := sortedStrings(bruteForcePoint(elems, p))
		require.Equal(t, want, got, "point=%d", p)
	}

	for i := 0; i < 200; i++ {
		start := uint64(rng.Intn(1100))
		r := Range{Start: start, End: start + uint64(rng.Intn(80))}
		got := sortedStrings(tree.Query(r))
		want := sortedStrings(bruteForceOverlap(elems, r))
		require.Equal(t, want, got, "range=%+v", r)
	}
}

func TestIntervalTreeStableAcrossConstructionOrder(t *testing.T) {
	elems := []Elem{
		{Range: Range{Start: 0, End: 10}, Value: []byte("a")},
		{Range: Range{Start: 5, End: 15}, Value: []byte("b")},
		{Range: Range{Start: 20, End: 30}, Value: []byte("c")},
	}
	shuffled := []Elem{elems[2], elems[0], elems[1]}

	t1 := Build(elems)
	t2 := Build(shuffled)

	require.Equal(t, sortedStrings(t1.QueryPoint(6)), sortedStrings(t2.QueryPoint(6)))
	require.Equal(t, sortedStrings(t1.Query(Range{Start: 0, End: 25})), sortedStrings(t2.Query(Range{Start: 0, End: 25})))
}

func TestIntervalTreeEmpty(t *testing.T) {
	tree := Build(nil)
	require.Empty(t, tree.QueryPoint(5))
	require.Empty(t, tree.Query(Range{Start: 0, End: 10}))
}

func TestArchivedTreeMatchesInMemory(t *testing.T) {
	elems := []Elem{
		{Range: Range{Start: 0, End: 10}, Value: []byte("a")},
		{Range: Range{Start: 5, End: 15}, Value: []byte("b")},
		{Range: Range{Start: 12, End: 20}, Value: []byte("c")},
		{Range: Range{Start: 20, End: 30}, Value: []byte("d")},
	}
	tree := Build(elems)
	buf := Encode(tree)

	archived, err := Open(buf)
	require.NoError(t, err)

	for p := uint64(0); p < 35; p++ {
		require.Equal(t, sortedStrings(tree.QueryPoint(p)), sortedStrings(archived.QueryPoint(p)), "point=%d", p)
	}
	r := Range{Start: 4, End: 22}
	require.Equal(t, sortedStrings(tree.Query(r)), sortedStrings(archived.Query(r)))
}

func TestOpenRejectsCorrupt(t *testing.T) {
	_, err := Open([]byte{1, 2, 3})
	require.Error(t, err)
}
