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

package aggregate

import (
	"fmt"

	"github.com/flamehost/profsink/internal/dbstore"
	"github.com/flamehost/profsink/internal/model"
	"github.com/flamehost/profsink/internal/symstore"
)

// SymbolizedRecord is one resolved (function, file, line) entry for a
// single observed Frame. A native frame with inlined calls expands to
// more than one record (spec.md §4.8); every other frame kind
// produces exactly one.
type SymbolizedRecord struct {
	Func, File string
	Line       uint32
	// Unsymbolized is set when no symbol information could be found
	// for the frame at all (symbol file absent, address outside every
	// range, or no stack_frames row for an interpreter frame). Func
	// and File are empty in that case.
	Unsymbolized bool
}

// SymbolizeFrame resolves f per spec.md §4.8: native frames query the
// executable's SymTree (expanding and ordering inline chains when
// inlineFrames is true, otherwise returning only the innermost
// record); every other interpreted frame looks up its one
// FrameMetaData row. Abort frames and any frame lacking symbol data
// resolve to a single Unsymbolized record, never an error -- spec.md
// §5 treats a symbolization miss as absence, not failure.
func SymbolizeFrame(reader *dbstore.StoreReader, syms *symstore.Store, f model.Frame, inlineFrames bool) ([]SymbolizedRecord, error) {
	if f.Kind.Tag() == model.FrameAbort {
		return []SymbolizedRecord{{Unsymbolized: true}}, nil
	}

	interp, ok := f.Kind.Interp()
	if !ok {
		return []SymbolizedRecord{{Unsymbolized: true}}, nil
	}
	if interp != model.InterpNative {
		meta, found, err := reader.GetFrameMetaData(f.Id)
		if err != nil {
			return nil, err
		}
		if !found {
			return []SymbolizedRecord{{Unsymbolized: true}}, nil
		}
		return []SymbolizedRecord{{
			Func: derefString(meta.FunctionName),
			File: derefString(meta.FileName),
			Line: meta.LineNumber,
		}}, nil
	}

	handle, found, err := syms.Get(f.Id.FileId)
	if err != nil {
		return nil, err
	}
	if !found {
		return []SymbolizedRecord{{Unsymbolized: true}}, nil
	}
	defer handle.Release()

	addr := uint64(f.Id.VirtAddr)
	ranges, err := handle.Tree().QueryPoint(addr)
	if err != nil {
		return nil, err
	}
	if len(ranges) == 0 {
		return []SymbolizedRecord{{Unsymbolized: true}}, nil
	}

	// Ascending depth puts the true leaf (depth 0, the range the PC is
	// physically inside) first; each outer/non-leaf entry's displayed
	// location is the call site recorded on the entry one step closer
	// to the leaf, mirroring how DWARF inline chains attach a call
	// site to the callee they produced (spec.md §4.8).
	sorted := symstore.SortAndDedupByDepth(ranges)
	out := make([]SymbolizedRecord, len(sorted))
	for i, rg := range sorted {
		if i == 0 {
			line, _ := rg.LineForOffset(uint32(addr - rg.RangeStart))
			out[i] = SymbolizedRecord{Func: rg.Func, File: rg.File, Line: line}
			continue
		}
		inner := sorted[i-1]
		out[i] = SymbolizedRecord{Func: rg.Func, File: inner.CallFile, Line: derefU32(inner.CallLine)}
	}

	if !inlineFrames {
		return out[:1], nil
	}
	return out, nil
}

// LocationKey names a symbolized location for grouping purposes
// (internal/aggregate's top-functions aggregator): the resolved
// func/file pair when available, or a stable identity derived from
// the raw frame when symbolization found nothing.
func LocationKey(f model.Frame, rec SymbolizedRecord) string {
	if rec.Unsymbolized {
		return fmt.Sprintf("raw:%s:%d", f.Id.FileId.Hex(), f.Id.VirtAddr)
	}
	return rec.Func + "\x00" + rec.File
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefU32(v *uint32) uint32 {
	if v == nil {
		return 0
	}
	return *v
}
