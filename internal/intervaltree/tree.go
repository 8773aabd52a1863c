// Copyright 2024 The Erigon Authors
// (modifications)
// This file is part of Erigon.
//
// Erigon is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Erigon is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Erigon. If not, see <http://www.gnu.org/licenses/>.

package intervaltree

import "sort"

// Range is a half-open [Start, End) interval.
type Range struct {
	Start, End uint64
}

func (r Range) Contains(p uint64) bool  { return p >= r.Start && p < r.End }
func (r Range) Overlaps(o Range) bool   { return r.Start < o.End && o.Start < r.End }

// Elem is one (range, value) pair handed to Build. Value is already
// caller-encoded bytes so the tree itself never needs to know the
// payload's shape -- it just carries it through to query results and,
// via Encode, into the archived form.
type Elem struct {
	Range Range
	Value []byte
}

type node struct {
	start, end, maxEnd uint64
	left, right        int32 // -1 when absent
	value              []byte
}

// Tree is the constructed, read-only interval tree. The zero value is
// not usable; use Build.
type Tree struct {
	nodes []node
	root  int32
}

// Build sorts elems by Range.Start and constructs a balanced BST over
// the sorted order (picking each subtree's median as its root, so
// depth is O(log n) regardless of input order), then augments every
// node with the maximum End in its subtree via a post-order pass.
//
// Construction is deterministic up to value ordering: elements tied
// on Start keep their relative input order (sort.SliceStable).
func Build(elems []Elem) *Tree {
	sorted := make([]Elem, len(elems))
	copy(sorted, elems)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Range.Start < sorted[j].Range.Start })

	t := &Tree{nodes: make([]node, 0, len(sorted))}
	t.root = t.buildRange(sorted, 0, len(sorted))
	return t
}

func (t *Tree) buildRange(sorted []Elem, lo, hi int) int32 {
	if lo >= hi {
		return -1
	}
	mid := lo + (hi-lo)/2
	left := t.buildRange(sorted, lo, mid)
	right := t.buildRange(sorted, mid+1, hi)

	e := sorted[mid]
	maxEnd := e.Range.End
	if left != -1 && t.nodes[left].maxEnd > maxEnd {
		maxEnd = t.nodes[left].maxEnd
	}
	if right != -1 && t.nodes[right].maxEnd > maxEnd {
		maxEnd = t.nodes[right].maxEnd
	}

	idx := int32(len(t.nodes))
	t.nodes = append(t.nodes, node{
		start: e.Range.Start, end: e.Range.End, maxEnd: maxEnd,
		left: left, right: right, value: e.Value,
	})
	return idx
}

func (t *Tree) Len() int { return len(t.nodes) }

// QueryPoint returns every value whose range contains p, in ascending
// subtree order.
func (t *Tree) QueryPoint(p uint64) [][]byte {
	var out [][]byte
	t.queryPoint(t.root, p, &out)
	return out
}

func (t *Tree) queryPoint(idx int32, p uint64, out *[][]byte) {
	if idx == -1 {
		return
	}
	n := &t.nodes[idx]
	if p >= n.maxEnd {
		// No interval in this subtree reaches p; prune.
		return
	}
	t.queryPoint(n.left, p, out)
	if n.start <= p && p < n.end {
		*out = append(*out, n.value)
	}
	if p >= n.start {
		t.queryPoint(n.right, p, out)
	}
}

// Query returns every value whose range overlaps r, in ascending
// subtree order.
func (t *Tree) Query(r Range) [][]byte {
	var out [][]byte
	t.query(t.root, r, &out)
	return out
}

func (t *Tree) query(idx int32, r Range, out *[][]byte) {
	if idx == -1 {
		return
	}
	n := &t.nodes[idx]
	if r.Start >= n.maxEnd {
		return
	}
	t.query(n.left, r, out)
	if n.start < r.End && r.Start < n.end {
		*out = append(*out, n.value)
	}
	if r.End > n.start {
		t.query(n.right, r, out)
	}
}
