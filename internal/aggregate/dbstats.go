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

import "github.com/flamehost/profsink/internal/dbstore"

// TableStats is one table's row-count snapshot, used by the
// SPEC_FULL.md "DB stats snapshot" supplement (an operator-facing view
// of storage growth, not something spec.md's ingest/aggregate
// invariants depend on).
type TableStats struct {
	Name          string
	CountEstimate uint64
}

// DBStats walks every table in store once and reports its row count.
// CountEstimate is a full scan (dbstore.Table.CountEstimate's own doc
// comment says as much) so this is meant for an occasional operator
// dashboard refresh, not a hot path.
func DBStats(store *dbstore.Store) ([]TableStats, error) {
	tables := []struct {
		name  string
		table *dbstore.Table
	}{
		{dbstore.TraceEvents, store.TraceEvents},
		{dbstore.StackTraces, store.StackTraces},
		{dbstore.StackFrames, store.StackFrames},
		{dbstore.Executables, store.Executables},
		{dbstore.Metrics, store.Metrics},
	}
	out := make([]TableStats, len(tables))
	for i, t := range tables {
		n, err := t.table.CountEstimate()
		if err != nil {
			return nil, err
		}
		out[i] = TableStats{Name: t.name, CountEstimate: n}
	}
	return out, nil
}
