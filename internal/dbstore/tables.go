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

package dbstore

// DBSchemaVersion tracks the on-disk key/value layout of the tables
// below. Bump Minor for an additive change (new table, new optional
// value field), Major for anything that requires a rewrite of
// existing rows.
var DBSchemaVersion = SchemaVersion{Major: 1, Minor: 0, Patch: 0}

type SchemaVersion struct {
	Major, Minor, Patch uint32
}

// Table names. Mirrors the five tables named in spec.md §4.1.
const (
	// TraceEvents: key = TraceCountId (timestamp_be || id_le || kind),
	// value = TraceCount. Append-mostly, scanned in timestamp order.
	TraceEvents = "trace_events"

	// StackTraces: key = TraceHash (xxh3-128 of the frame list),
	// value = an ordered Frame list (EncodeFrameList).
	StackTraces = "stack_traces"

	// StackFrames: key = FrameId (file_id || virt_addr_be),
	// value = FrameMetaData.
	StackFrames = "stack_frames"

	// Executables: key = FileId, value = ExecutableMeta.
	// RandomAccess: looked up once per unique frame during ingestion
	// and once per symbolizer discovery tick.
	Executables = "executables"

	// Metrics: key = MetricKey (timestamp_be || metric_id_le),
	// value = a merged int64 (see merge.go).
	Metrics = "metrics"
)

// AccessPattern mirrors spec.md's two storage-option profiles. mdbx
// has no native notion of either; Table (table.go) applies the
// bloom filter / compression consequences at the application layer
// instead of inside the engine.
type AccessPattern uint8

const (
	// RandomAccess tables are point-read heavy and benefit from a
	// per-table bloom filter that lets a miss skip the mdbx cursor
	// entirely.
	RandomAccess AccessPattern = iota
	// SequentialRead tables are scanned in key order far more often
	// than they are point-read, and their values are large enough
	// (event rows, batched counters) to benefit from zstd framing.
	SequentialRead
)

// TableCfgItem is the per-table configuration analogous to
// erigon-lib/kv's TableCfgItem: it picks the access pattern (and so
// the cache/bloom/compression behavior Table wires in) and whether
// the table carries a merge operator.
type TableCfgItem struct {
	Access       AccessPattern
	CacheEntries uint32
	HasMerge     bool
}

type TableCfg map[string]TableCfgItem

// Tables is the fixed schema for the profiling store. Every table the
// ingestion, aggregation, and symbolizer packages touch is listed
// here; the store's open path (store.go) creates every one of them up
// front.
var Tables = TableCfg{
	TraceEvents: {Access: SequentialRead, CacheEntries: 0},
	StackTraces: {Access: RandomAccess, CacheEntries: 1 << 16},
	StackFrames: {Access: RandomAccess, CacheEntries: 1 << 18},
	Executables: {Access: RandomAccess, CacheEntries: 1 << 12},
	Metrics:     {Access: SequentialRead, CacheEntries: 0, HasMerge: true},
}

// TableNames returns the schema's table names in a stable order, used
// by the store's open path (store.go) to create tables deterministically and by tests that
// want to iterate every table.
func TableNames() []string {
	return []string{TraceEvents, StackTraces, StackFrames, Executables, Metrics}
}
