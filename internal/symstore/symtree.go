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

package symstore

import (
	"encoding/binary"
	"sort"

	"github.com/flamehost/profsink/internal/dbstore/archive"
	"github.com/flamehost/profsink/internal/intervaltree"
)

// LineEntry is one (offset -> line) pair of a SymRange's embedded line
// table (spec §3 SymRange), kept sorted by Offset ascending so
// LineForOffset can do a largest-offset-<=-target scan.
type LineEntry struct {
	Offset uint32
	Line   uint32
}

// ResolvedSymRange is one interval-tree leaf fully decoded: string
// table indices already resolved to their strings, ready to hand to a
// symbolization consumer (internal/aggregate's §4.8 frame
// symbolization).
type ResolvedSymRange struct {
	Func, File, CallFile string
	CallLine             *uint32
	Depth                uint16
	RangeStart           uint64
	LineTable            []LineEntry
}

// LineForOffset returns the line number of the line-table entry with
// the largest Offset <= offset, and false if the table is empty or
// every entry's offset exceeds it (spec §4.8: "line is resolved from
// the embedded line table by largest offset <= (addr - range.start)").
// Line tables are tiny (a handful of inlining boundaries per range),
// so a linear scan is simplest and correct regardless of input order.
func (r ResolvedSymRange) LineForOffset(offset uint32) (uint32, bool) {
	var bestOffset, bestLine uint32
	found := false
	for _, e := range r.LineTable {
		if e.Offset <= offset && (!found || e.Offset > bestOffset) {
			bestOffset, bestLine, found = e.Offset, e.Line, true
		}
	}
	return bestLine, found
}

// SortAndDedupByDepth implements spec.md §4.3's tie-breaking rule for
// inline frame consumers: "sort by depth ascending and deduplicate by
// depth". Only the first entry observed at a given depth is kept.
func SortAndDedupByDepth(ranges []ResolvedSymRange) []ResolvedSymRange {
	sorted := make([]ResolvedSymRange, len(ranges))
	copy(sorted, ranges)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Depth < sorted[j].Depth })

	out := sorted[:0:0]
	seen := map[uint16]bool{}
	for _, r := range sorted {
		if seen[r.Depth] {
			continue
		}
		seen[r.Depth] = true
		out = append(out, r)
	}
	return out
}

// TreeBuilder accumulates (address range -> SymRange) entries for one
// executable with interned function/file strings, matching spec.md
// §3's "SymTree = (string table, interval tree...)" and §4.6 step 3
// ("append to an IntervalTree builder with interned strings, insertion
// order = string table").
type TreeBuilder struct {
	strings []string
	index   map[string]int32
	elems   []intervaltree.Elem
}

func NewTreeBuilder() *TreeBuilder {
	return &TreeBuilder{index: map[string]int32{}}
}

func (b *TreeBuilder) intern(s string) int32 {
	if idx, ok := b.index[s]; ok {
		return idx
	}
	idx := int32(len(b.strings))
	b.strings = append(b.strings, s)
	b.index[s] = idx
	return idx
}

// AddRange queues one decoded symbol range record (spec §4.6 step 3's
// "Range" record). addrStart/addrEnd are the half-open virtual address
// interval; funcName/file/callFile are interned; lineTable must be
// supplied in ascending Offset order (the symbol fetch/extract callers
// are the only producers and emit it pre-sorted).
func (b *TreeBuilder) AddRange(addrStart, addrEnd uint64, funcName, file, callFile string, callLine *uint32, depth uint16, lineTable []LineEntry) {
	value := encodeSymRangeValue(b.intern(funcName), b.intern(file), b.intern(callFile), callLine, depth, addrStart, lineTable)
	b.elems = append(b.elems, intervaltree.Elem{
		Range: intervaltree.Range{Start: addrStart, End: addrEnd},
		Value: value,
	})
}

// Len reports how many ranges have been queued, used for
// ExecutableMeta.SymbStatus's Complete{num_symbols} (spec §3 invariant).
func (b *TreeBuilder) Len() int { return len(b.elems) }

// Encode finalizes the builder into the archived, mmap-ready SymTree
// buffer that symstore.Store.Insert writes to disk.
func (b *TreeBuilder) Encode() []byte {
	tree := intervaltree.Build(b.elems)
	treeBytes := intervaltree.Encode(tree)

	out := archive.NewBuilder()
	out.PutU32(uint32(len(b.strings)))
	for _, s := range b.strings {
		out.PutString(s)
	}
	out.PutBytes(treeBytes)
	return out.Finish()
}

func encodeSymRangeValue(funcIdx, fileIdx, callFileIdx int32, callLine *uint32, depth uint16, rangeStart uint64, lineTable []LineEntry) []byte {
	b := archive.NewBuilder()
	b.PutI64(int64(funcIdx))
	b.PutI64(int64(fileIdx))
	b.PutI64(int64(callFileIdx))
	b.PutOptionalU32(callLine)
	b.PutU16(depth)
	b.PutU64(rangeStart)

	packed := make([]byte, len(lineTable)*8)
	for i, e := range lineTable {
		binary.LittleEndian.PutUint32(packed[i*8:], e.Offset)
		binary.LittleEndian.PutUint32(packed[i*8+4:], e.Line)
	}
	b.PutBytes(packed)
	return b.Finish()
}

func decodeSymRangeValue(strs []string, raw []byte) (ResolvedSymRange, error) {
	v, err := archive.OpenView(raw)
	if err != nil {
		return ResolvedSymRange{}, err
	}
	funcIdx, err := v.I64()
	if err != nil {
		return ResolvedSymRange{}, err
	}
	fileIdx, err := v.I64()
	if err != nil {
		return ResolvedSymRange{}, err
	}
	callFileIdx, err := v.I64()
	if err != nil {
		return ResolvedSymRange{}, err
	}
	callLine, err := v.OptionalU32()
	if err != nil {
		return ResolvedSymRange{}, err
	}
	depth16, err := v.U16()
	if err != nil {
		return ResolvedSymRange{}, err
	}
	rangeStart, err := v.U64()
	if err != nil {
		return ResolvedSymRange{}, err
	}
	packed, err := v.Bytes()
	if err != nil {
		return ResolvedSymRange{}, err
	}
	if len(packed)%8 != 0 {
		return ResolvedSymRange{}, archive.ErrCorrupt
	}
	lineTable := make([]LineEntry, len(packed)/8)
	for i := range lineTable {
		lineTable[i] = LineEntry{
			Offset: binary.LittleEndian.Uint32(packed[i*8:]),
			Line:   binary.LittleEndian.Uint32(packed[i*8+4:]),
		}
	}

	resolve := func(idx int32) string {
		if idx < 0 || int(idx) >= len(strs) {
			return ""
		}
		return strs[idx]
	}
	return ResolvedSymRange{
		Func: resolve(int32(funcIdx)), File: resolve(int32(fileIdx)), CallFile: resolve(int32(callFileIdx)),
		CallLine: callLine, Depth: depth16, RangeStart: rangeStart, LineTable: lineTable,
	}, nil
}

// ArchivedSymTree reads a TreeBuilder.Encode-d buffer in place: the
// string table is decoded once on Open (it is small relative to the
// tree), and every query resolves its matches straight out of the
// mmap'd tree bytes.
type ArchivedSymTree struct {
	strings []string
	tree    *intervaltree.ArchivedTree
}

func OpenSymTree(buf []byte) (*ArchivedSymTree, error) {
	v, err := archive.OpenView(buf)
	if err != nil {
		return nil, err
	}
	n, err := v.U32()
	if err != nil {
		return nil, err
	}
	strs := make([]string, n)
	for i := range strs {
		strs[i], err = v.String()
		if err != nil {
			return nil, err
		}
	}
	treeBytes, err := v.Bytes()
	if err != nil {
		return nil, err
	}
	tree, err := intervaltree.Open(treeBytes)
	if err != nil {
		return nil, err
	}
	return &ArchivedSymTree{strings: strs, tree: tree}, nil
}

// NumRanges reports the tree's range count, checked against
// ExecutableMeta.SymbStatus's Complete{n} invariant (spec §3).
func (t *ArchivedSymTree) NumRanges() int { return t.tree.Len() }

// QueryPoint returns every range containing addr, decoded and with its
// interned strings resolved.
func (t *ArchivedSymTree) QueryPoint(addr uint64) ([]ResolvedSymRange, error) {
	raws := t.tree.QueryPoint(addr)
	out := make([]ResolvedSymRange, 0, len(raws))
	for _, raw := range raws {
		r, err := decodeSymRangeValue(t.strings, raw)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}
