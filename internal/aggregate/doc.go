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

// Package aggregate implements spec.md §4.7's pure, concurrent-reader
// aggregations over the five storage tables (event-count buckets,
// trace sampling, top functions, metric histograms) and §4.8's frame
// symbolization they all build on, plus the SPEC_FULL.md "DB stats
// snapshot" supplement. Every entry point here tolerates a
// concurrently writing ingestion pipeline and a concurrently
// replacing symbolizer: missing stack_traces rows are skipped, not
// treated as errors (spec.md §5).
package aggregate

import "github.com/flamehost/profsink/internal/model"

// bucketStep implements the "step = max(1, (end-start)/buckets)"
// rule shared by event-count buckets and metric histograms.
func bucketStep(start, end uint64, buckets int) uint64 {
	span := end - start
	step := span / uint64(buckets)
	if step < 1 {
		step = 1
	}
	return step
}

// includesKind reports whether an aggregator scanning for want should
// accept an event recorded as got, honoring spec.md §4.7's "For
// Unknown/Mixed kind, do not filter" rule.
func includesKind(want, got model.SampleKind) bool {
	if want == model.SampleUnknown || want == model.SampleMixed {
		return true
	}
	return want == got
}
