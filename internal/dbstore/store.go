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

import (
	"fmt"

	"github.com/flamehost/profsink/internal/model"
)

// Store bundles the five tables of spec.md §4.1 over one Engine, plus
// the directory lock that keeps a second process from opening the
// same data directory.
type Store struct {
	Engine Engine
	lock   *DirLock

	TraceEvents *Table
	StackTraces *Table
	StackFrames *Table
	Executables *Table
	Metrics     *Table
}

// Open creates (if necessary) and opens every table in Tables against
// a freshly-locked mdbx environment rooted at dir.
func Open(dir string, registry model.MetricRegistry) (*Store, error) {
	return OpenWithTables(dir, Tables, registry)
}

// OpenWithTables is Open with an explicit TableCfg, letting
// internal/config apply its cache-size overrides (§4.1.3) without this
// package needing to know anything about configuration.
func OpenWithTables(dir string, tables TableCfg, registry model.MetricRegistry) (*Store, error) {
	lock, err := LockDir(dir)
	if err != nil {
		return nil, err
	}
	engine, err := OpenMDBX(dir, len(tables)+1)
	if err != nil {
		_ = lock.Unlock()
		return nil, err
	}
	store, err := newStore(engine, tables, registry)
	if err != nil {
		_ = engine.Close()
		_ = lock.Unlock()
		return nil, err
	}
	store.lock = lock
	return store, nil
}

// newStore wires tables over an already-open Engine, used by Open and
// directly by tests with a memEngine.
func newStore(engine Engine, tables TableCfg, registry model.MetricRegistry) (*Store, error) {
	for _, name := range TableNames() {
		if err := engine.CreateTable(name); err != nil {
			return nil, fmt.Errorf("dbstore: create table %s: %w", name, err)
		}
	}

	open := func(name string) (*Table, error) {
		cfg, ok := tables[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownTable, name)
		}
		var merge MergeFunc
		if cfg.HasMerge {
			merge = MetricsMerge(registry)
		}
		return OpenTable(engine, name, cfg, merge)
	}

	store := &Store{Engine: engine}
	var err error
	if store.TraceEvents, err = open(TraceEvents); err != nil {
		return nil, err
	}
	if store.StackTraces, err = open(StackTraces); err != nil {
		return nil, err
	}
	if store.StackFrames, err = open(StackFrames); err != nil {
		return nil, err
	}
	if store.Executables, err = open(Executables); err != nil {
		return nil, err
	}
	if store.Metrics, err = open(Metrics); err != nil {
		return nil, err
	}
	return store, nil
}

// OpenMem builds a Store over an in-process memEngine, for tests that
// want the full typed facade without a data directory.
func OpenMem(registry model.MetricRegistry) (*Store, error) {
	return newStore(NewMemEngine(), Tables, registry)
}

// NamedTables returns every table keyed by its schema name, for
// diagnostics and internal/metrics that need to walk all five rather
// than name each field.
func (s *Store) NamedTables() map[string]*Table {
	return map[string]*Table{
		TraceEvents: s.TraceEvents,
		StackTraces: s.StackTraces,
		StackFrames: s.StackFrames,
		Executables: s.Executables,
		Metrics:     s.Metrics,
	}
}

func (s *Store) Close() error {
	err := s.Engine.Close()
	if s.lock != nil {
		if lerr := s.lock.Unlock(); lerr != nil && err == nil {
			err = lerr
		}
	}
	return err
}
