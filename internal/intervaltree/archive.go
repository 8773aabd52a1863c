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

import (
	"encoding/binary"

	"github.com/flamehost/profsink/internal/dbstore/archive"
)

// Encode serializes t into spec.md §4.3's required archived form: four
// parallel fixed-width arrays (start, end, maxEnd, left/right child
// index) plus a value blob region, so ArchivedTree can query directly
// against mmap'd bytes without ever materializing a node graph.
func Encode(t *Tree) []byte {
	n := len(t.nodes)
	starts := make([]byte, n*8)
	ends := make([]byte, n*8)
	maxEnds := make([]byte, n*8)
	children := make([]byte, n*8) // left int32, right int32
	valueOffs := make([]byte, n*8)
	var values []byte

	for i, nd := range t.nodes {
		binary.LittleEndian.PutUint64(starts[i*8:], nd.start)
		binary.LittleEndian.PutUint64(ends[i*8:], nd.end)
		binary.LittleEndian.PutUint64(maxEnds[i*8:], nd.maxEnd)
		binary.LittleEndian.PutUint32(children[i*8:], uint32(nd.left))
		binary.LittleEndian.PutUint32(children[i*8+4:], uint32(nd.right))
		binary.LittleEndian.PutUint32(valueOffs[i*8:], uint32(len(values)))
		binary.LittleEndian.PutUint32(valueOffs[i*8+4:], uint32(len(nd.value)))
		values = append(values, nd.value...)
	}

	b := archive.NewBuilder()
	b.PutU32(uint32(n))
	b.PutI64(int64(t.root))
	b.PutBytes(starts)
	b.PutBytes(ends)
	b.PutBytes(maxEnds)
	b.PutBytes(children)
	b.PutBytes(valueOffs)
	b.PutBytes(values)
	return b.Finish()
}

// ArchivedTree reads an Encode-d buffer in place: every query walks
// the backing []byte directly, the same cost profile as Tree but
// without decoding into a node slice first.
type ArchivedTree struct {
	count   uint32
	root    int32
	starts  []byte
	ends    []byte
	maxEnds []byte
	children []byte
	valueOffs []byte
	values  []byte
}

func Open(buf []byte) (*ArchivedTree, error) {
	v, err := archive.OpenView(buf)
	if err != nil {
		return nil, err
	}
	count, err := v.U32()
	if err != nil {
		return nil, err
	}
	root, err := v.I64()
	if err != nil {
		return nil, err
	}
	starts, err := v.Bytes()
	if err != nil {
		return nil, err
	}
	ends, err := v.Bytes()
	if err != nil {
		return nil, err
	}
	maxEnds, err := v.Bytes()
	if err != nil {
		return nil, err
	}
	children, err := v.Bytes()
	if err != nil {
		return nil, err
	}
	valueOffs, err := v.Bytes()
	if err != nil {
		return nil, err
	}
	values, err := v.Bytes()
	if err != nil {
		return nil, err
	}
	if uint32(len(starts)) != count*8 || uint32(len(ends)) != count*8 ||
		uint32(len(maxEnds)) != count*8 || uint32(len(children)) != count*8 ||
		uint32(len(valueOffs)) != count*8 {
		return nil, archive.ErrCorrupt
	}
	return &ArchivedTree{
		count: count, root: int32(root),
		starts: starts, ends: ends, maxEnds: maxEnds,
		children: children, valueOffs: valueOffs, values: values,
	}, nil
}

// Len reports the number of ranges in the tree.
func (t *ArchivedTree) Len() int { return int(t.count) }

func (t *ArchivedTree) nodeStart(i int32) uint64  { return binary.LittleEndian.Uint64(t.starts[i*8:]) }
func (t *ArchivedTree) nodeEnd(i int32) uint64     { return binary.LittleEndian.Uint64(t.ends[i*8:]) }
func (t *ArchivedTree) nodeMaxEnd(i int32) uint64  { return binary.LittleEndian.Uint64(t.maxEnds[i*8:]) }
func (t *ArchivedTree) nodeLeft(i int32) int32 {
	return int32(binary.LittleEndian.Uint32(t.children[i*8:]))
}
func (t *ArchivedTree) nodeRight(i int32) int32 {
	return int32(binary.LittleEndian.Uint32(t.children[i*8+4:]))
}
func (t *ArchivedTree) nodeValue(i int32) []byte {
	off := binary.LittleEndian.Uint32(t.valueOffs[i*8:])
	n := binary.LittleEndian.Uint32(t.valueOffs[i*8+4:])
	return t.values[off : off+n]
}

func (t *ArchivedTree) QueryPoint(p uint64) [][]byte {
	var out [][]byte
	t.queryPoint(t.root, p, &out)
	return out
}

func (t *ArchivedTree) queryPoint(idx int32, p uint64, out *[][]byte) {
	if idx == -1 {
		return
	}
	if p >= t.nodeMaxEnd(idx) {
		return
	}
	t.queryPoint(t.nodeLeft(idx), p, out)
	if t.nodeStart(idx) <= p && p < t.nodeEnd(idx) {
		*out = append(*out, t.nodeValue(idx))
	}
	if p >= t.nodeStart(idx) {
		t.queryPoint(t.nodeRight(idx), p, out)
	}
}

func (t *ArchivedTree) Query(r Range) [][]byte {
	var out [][]byte
	t.query(t.root, r, &out)
	return out
}

func (t *ArchivedTree) query(idx int32, r Range, out *[][]byte) {
	if idx == -1 {
		return
	}
	if r.Start >= t.nodeMaxEnd(idx) {
		return
	}
	t.query(t.nodeLeft(idx), r, out)
	start, end := t.nodeStart(idx), t.nodeEnd(idx)
	if start < r.End && r.Start < end {
		*out = append(*out, t.nodeValue(idx))
	}
	if r.End > start {
		t.query(t.nodeRight(idx), r, out)
	}
}
