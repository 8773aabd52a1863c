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

	"github.com/flamehost/profsink/internal/dbstore"
	"github.com/flamehost/profsink/internal/model"
)

// MetricBucket is one time bucket's (count, sum) pair for a metric.
type MetricBucket struct {
	BucketStart uint64
	Count       uint64
	Sum         int64
}

// MetricSeries is one metric id's time-ordered bucket sequence.
type MetricSeries struct {
	MetricId uint32
	Buckets  []MetricBucket
}

// MetricHistogram implements spec.md §4.7: scan the metrics table over
// [start, end], fold each row's already-merged value into its
// (metric_id, time_bucket) (count, sum) pair, then regroup by metric
// id into a time-ordered sequence. Honors the same empty-window rule
// as EventCountBuckets.
func MetricHistogram(metrics *dbstore.Table, start, end uint64, buckets int) ([]MetricSeries, error) {
	if end <= start || buckets <= 0 {
		return nil, nil
	}

	step := bucketStep(start, end, buckets)
	type key struct {
		metricId uint32
		bucket   uint64
	}
	agg := make(map[key]*MetricBucket)
	order := make([]uint32, 0)
	seen := map[uint32]bool{}

	fromKey := model.MetricKey{Timestamp: start}.Encode()
	err := metrics.Range(fromKey[:], func(k, v []byte) (bool, error) {
		mk, ok := model.DecodeMetricKey(k)
		if !ok {
			return true, nil
		}
		if mk.Timestamp > end {
			return false, nil
		}
		val, err := dbstore.DecodeMetricValue(v)
		if err != nil {
			return false, err
		}

		bucketIdx := (mk.Timestamp - start) / step
		bucketStart := start + bucketIdx*step
		kk := key{mk.MetricId, bucketStart}
		b := agg[kk]
		if b == nil {
			b = &MetricBucket{BucketStart: bucketStart}
			agg[kk] = b
		}
		b.Count++
		b.Sum += val

		if !seen[mk.MetricId] {
			seen[mk.MetricId] = true
			order = append(order, mk.MetricId)
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]MetricSeries, 0, len(order))
	for _, id := range order {
		var series []MetricBucket
		for kk, b := range agg {
			if kk.metricId == id {
				series = append(series, *b)
			}
		}
		sort.Slice(series, func(i, j int) bool { return series[i].BucketStart < series[j].BucketStart })
		out = append(out, MetricSeries{MetricId: id, Buckets: series})
	}
	return out, nil
}
