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

// BucketResult is event_count_buckets' result: Counts[i] is the number
// of samples whose timestamp falls in [Start+i*Step, Start+(i+1)*Step);
// the last bucket also counts samples at exactly End.
type BucketResult struct {
	Start, End, Step uint64
	Counts           []uint64
}

// EventCountBuckets implements spec.md §4.7: pick step =
// max(1, (end-start)/buckets), align start/end down to a multiple of
// step, then scan trace_events in [start, end] summing each matching
// row's count into its bucket. Kind filters to one SampleKind unless
// it is Unknown or Mixed, in which case every kind is counted.
//
// Per the "empty window" testable property, end <= start or
// buckets <= 0 returns an empty result rather than scanning anything.
func EventCountBuckets(traceEvents *dbstore.Table, start, end uint64, buckets int, kind model.SampleKind) (BucketResult, error) {
	if end <= start || buckets <= 0 {
		return BucketResult{}, nil
	}

	step := bucketStep(start, end, buckets)
	alignedStart := start - start%step
	alignedEnd := end - end%step
	if alignedEnd < alignedStart {
		alignedEnd = alignedStart
	}
	numBuckets := int((alignedEnd - alignedStart) / step)
	if numBuckets == 0 {
		numBuckets = 1
	}
	counts := make([]uint64, numBuckets)

	fromKey := model.TraceCountId{Timestamp: alignedStart}.Encode()
	err := traceEvents.Range(fromKey[:], func(k, v []byte) (bool, error) {
		id, ok := model.DecodeTraceCountId(k)
		if !ok {
			return true, nil
		}
		if id.Timestamp > alignedEnd {
			return false, nil
		}
		if !includesKind(kind, id.Kind) {
			return true, nil
		}
		tc, err := dbstore.DecodeTraceCount(v)
		if err != nil {
			return false, err
		}
		idx := int((id.Timestamp - alignedStart) / step)
		if idx >= numBuckets {
			idx = numBuckets - 1
		}
		counts[idx] += tc.Count
		return true, nil
	})
	if err != nil {
		return BucketResult{}, err
	}
	return BucketResult{Start: alignedStart, End: alignedEnd, Step: step, Counts: counts}, nil
}
