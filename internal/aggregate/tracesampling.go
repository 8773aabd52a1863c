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
	"github.com/flamehost/profsink/internal/dbstore"
	"github.com/flamehost/profsink/internal/model"
)

// TraceSample is one distinct stack trace observed in a window, with
// the number of trace_events rows that referenced it.
type TraceSample struct {
	Hash   model.TraceHash
	Frames []model.Frame
	Count  uint64
}

// TraceSampling implements spec.md §4.7: scan trace_events in
// [start, end], group by trace_hash, dereferencing stack_traces only
// on the first encounter of a hash. A trace_events row whose hash has
// no stack_traces entry is silently skipped rather than treated as an
// error.
// Results are returned in first-observed order.
func TraceSampling(reader *dbstore.StoreReader, traceEvents *dbstore.Table, start, end uint64, kind model.SampleKind) ([]TraceSample, error) {
	if end <= start {
		return nil, nil
	}

	order := make([]model.TraceHash, 0)
	byHash := map[model.TraceHash]*TraceSample{}

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

		s, ok := byHash[tc.TraceHash]
		if !ok {
			frames, found, err := reader.GetStackTrace(tc.TraceHash)
			if err != nil {
				return false, err
			}
			if !found {
				return true, nil
			}
			s = &TraceSample{Hash: tc.TraceHash, Frames: frames}
			byHash[tc.TraceHash] = s
			order = append(order, tc.TraceHash)
		}
		s.Count += tc.Count
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]TraceSample, len(order))
	for i, h := range order {
		out[i] = *byHash[h]
	}
	return out, nil
}
