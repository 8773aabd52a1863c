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

// Package changewatch implements spec.md §4.10: "holds the last
// observed last_seq per tracked table; any_changes() compares and
// updates in one pass, returning true if any differ (first call
// always returns true)". A UI poller uses this to decide whether an
// aggregator re-run is worth the cost.
package changewatch

import "sync"

// SeqSource reports a table's current change-sequence number; in
// production this is *dbstore.Table.LastSeq.
type SeqSource func() (uint64, error)

// Watcher tracks one or more named SeqSource values and reports
// whether any has advanced since the last call.
type Watcher struct {
	mu      sync.Mutex
	sources map[string]SeqSource
	last    map[string]uint64
	seen    map[string]bool
}

func New() *Watcher {
	return &Watcher{
		sources: map[string]SeqSource{},
		last:    map[string]uint64{},
		seen:    map[string]bool{},
	}
}

// Track registers a table under name. Safe to call before or after
// AnyChanges has run.
func (w *Watcher) Track(name string, src SeqSource) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sources[name] = src
}

// AnyChanges reads every tracked source once, updates the retained
// last-seen sequence numbers, and reports whether any source's value
// differs from what was last observed. A source never seen before
// always counts as changed, so the very first call (with any sources
// tracked) returns true.
func (w *Watcher) AnyChanges() (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	changed := false
	for name, src := range w.sources {
		seq, err := src()
		if err != nil {
			return false, err
		}
		if !w.seen[name] || w.last[name] != seq {
			changed = true
		}
		w.last[name] = seq
		w.seen[name] = true
	}
	return changed, nil
}
