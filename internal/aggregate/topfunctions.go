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
	"sort"

	roaring "github.com/RoaringBitmap/roaring/v2"

	"github.com/flamehost/profsink/internal/dbstore"
	"github.com/flamehost/profsink/internal/model"
	"github.com/flamehost/profsink/internal/symstore"
)

// heatmapBuckets is the fixed width of the per-location "when in the
// window did this function run" heatmap (spec.md §4.7: "a 256-bit
// per-location heatmap").
const heatmapBuckets = 256

// FunctionStats is one location's aggregated contribution across every
// trace in a top-functions window.
type FunctionStats struct {
	Location string

	// SelfCount/SelfHeatmap only ever credit the single innermost
	// symbolized record of the entire expanded trace (the actual PC
	// location), never an inlined caller above it.
	SelfCount   uint64
	SelfHeatmap *roaring.Bitmap

	// WithChildrenCount/WithChildrenHeatmap credit every distinct frame
	// (deduplicated within one trace by its raw FrameId, so recursion
	// counts once) that this location appears as, whether as the leaf
	// or as one of its callers.
	WithChildrenCount   uint64
	WithChildrenHeatmap *roaring.Bitmap
}

type expandedEntry struct {
	frameID model.FrameId
	rec     SymbolizedRecord
	isLeaf  bool
}

// TopFunctions implements spec.md §4.7: iterate trace_events in
// [start, end], expand each referenced trace into its symbolized
// (optionally inlined) frames via SymbolizeFrame, and accumulate per
// location self/with-children sample counts plus a 256-bucket heatmap
// of when each occurred in the window. Traces with no stack_traces row
// are silently skipped, matching TraceSampling.
func TopFunctions(reader *dbstore.StoreReader, traceEvents *dbstore.Table, syms *symstore.Store, start, end uint64, kind model.SampleKind, inlineFrames bool) (map[string]*FunctionStats, error) {
	if end <= start {
		return map[string]*FunctionStats{}, nil
	}

	stats := map[string]*FunctionStats{}
	traceCache := map[model.TraceHash][]expandedEntry{}
	span := end - start

	fromKey := model.TraceCountId{Timestamp: start}.Encode()
	err := traceEvents.Range(fromKey[:], func(k, v []byte) (bool, error) {
		id, ok := model.DecodeTraceCountId(k)
		if !ok {
			return true, nil
		}
		if id.Timestamp > end {
			return false, nil
		}
		if !includesKind(kind, id.Kind) {
			return true, nil
		}
		tc, err := dbstore.DecodeTraceCount(v)
		if err != nil {
			return false, err
		}

		expanded, ok := traceCache[tc.TraceHash]
		if !ok {
			frames, found, err := reader.GetStackTrace(tc.TraceHash)
			if err != nil {
				return false, err
			}
			if !found {
				return true, nil
			}
			expanded, err = expandTrace(reader, syms, frames, inlineFrames)
			if err != nil {
				return false, err
			}
			traceCache[tc.TraceHash] = expanded
		}

		bucket := int(float64(id.Timestamp-start) / float64(span) * float64(heatmapBuckets-1))
		if bucket < 0 {
			bucket = 0
		}
		if bucket >= heatmapBuckets {
			bucket = heatmapBuckets - 1
		}

		seen := map[model.FrameId]bool{}
		for _, e := range expanded {
			st := stats[LocationKey(model.Frame{Id: e.frameID}, e.rec)]
			if st == nil {
				st = &FunctionStats{
					Location:            LocationKey(model.Frame{Id: e.frameID}, e.rec),
					SelfHeatmap:         roaring.New(),
					WithChildrenHeatmap: roaring.New(),
				}
				stats[st.Location] = st
			}
			if e.isLeaf {
				st.SelfCount += tc.Count
				st.SelfHeatmap.Add(uint32(bucket))
			}
			if !seen[e.frameID] {
				seen[e.frameID] = true
				st.WithChildrenCount += tc.Count
				st.WithChildrenHeatmap.Add(uint32(bucket))
			}
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// expandTrace symbolizes every frame in order, marking only the very
// first record of the very first frame as the trace's leaf (frames
// are stored leaf-first, spec.md §3).
func expandTrace(reader *dbstore.StoreReader, syms *symstore.Store, frames []model.Frame, inlineFrames bool) ([]expandedEntry, error) {
	out := make([]expandedEntry, 0, len(frames))
	for fi, f := range frames {
		recs, err := SymbolizeFrame(reader, syms, f, inlineFrames)
		if err != nil {
			return nil, err
		}
		for ri, rec := range recs {
			out = append(out, expandedEntry{frameID: f.Id, rec: rec, isLeaf: fi == 0 && ri == 0})
		}
	}
	return out, nil
}

// SortedByWithChildren returns stats's values ordered by
// WithChildrenCount descending, the display order spec.md §4.7's
// top-functions view uses.
func SortedByWithChildren(stats map[string]*FunctionStats) []*FunctionStats {
	out := make([]*FunctionStats, 0, len(stats))
	for _, s := range stats {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].WithChildrenCount != out[j].WithChildrenCount {
			return out[i].WithChildrenCount > out[j].WithChildrenCount
		}
		return out[i].Location < out[j].Location
	})
	return out
}
