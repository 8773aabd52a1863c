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
	"bytes"
	"sync"

	"github.com/google/btree"
)

// memEngine is an in-process Engine with the same ordering and
// sequencing contract as mdbxEngine, for tests that want real Table
// logic (cache invalidation, merge folding, batch commit semantics)
// without opening a data directory.
type memEngine struct {
	mu     sync.Mutex
	tables map[string]*memTable
}

type memTable struct {
	tree *btree.BTreeG[memRow]
	seq  uint64
}

type memRow struct {
	key, value []byte
}

func memRowLess(a, b memRow) bool { return bytes.Compare(a.key, b.key) < 0 }

func NewMemEngine() *memEngine {
	return &memEngine{tables: map[string]*memTable{}}
}

func (e *memEngine) CreateTable(table string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.tables[table]; !ok {
		e.tables[table] = &memTable{tree: btree.NewG(32, memRowLess)}
	}
	return nil
}

func (e *memEngine) View(fn func(tx ReadTx) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(&memTx{engine: e})
}

func (e *memEngine) Update(fn func(tx WriteTx) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(&memTx{engine: e})
}

func (e *memEngine) Close() error { return nil }

type memTx struct{ engine *memEngine }

func (t *memTx) table(name string) (*memTable, error) {
	tb, ok := t.engine.tables[name]
	if !ok {
		return nil, ErrUnknownTable
	}
	return tb, nil
}

func (t *memTx) Get(table string, key []byte) ([]byte, bool, error) {
	tb, err := t.table(table)
	if err != nil {
		return nil, false, err
	}
	row, ok := tb.tree.Get(memRow{key: key})
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(row.value))
	copy(out, row.value)
	return out, true, nil
}

func (t *memTx) Put(table string, key, value []byte) error {
	tb, err := t.table(table)
	if err != nil {
		return err
	}
	k, v := append([]byte(nil), key...), append([]byte(nil), value...)
	tb.tree.ReplaceOrInsert(memRow{key: k, value: v})
	tb.seq++
	return nil
}

func (t *memTx) Delete(table string, key []byte) error {
	tb, err := t.table(table)
	if err != nil {
		return err
	}
	tb.tree.Delete(memRow{key: key})
	tb.seq++
	return nil
}

func (t *memTx) Seq(table string) (uint64, error) {
	tb, err := t.table(table)
	if err != nil {
		return 0, err
	}
	return tb.seq, nil
}

func (t *memTx) Cursor(table string, from []byte) (Cursor, error) {
	tb, err := t.table(table)
	if err != nil {
		return nil, err
	}
	var rows []memRow
	visit := func(r memRow) bool {
		rows = append(rows, r)
		return true
	}
	if from != nil {
		tb.tree.AscendGreaterOrEqual(memRow{key: from}, visit)
	} else {
		tb.tree.Ascend(visit)
	}
	return &memCursor{rows: rows, pos: -1}, nil
}

type memCursor struct {
	rows []memRow
	pos  int
}

func (c *memCursor) Next() bool {
	c.pos++
	return c.pos < len(c.rows)
}

func (c *memCursor) Key() []byte   { return c.rows[c.pos].key }
func (c *memCursor) Value() []byte { return c.rows[c.pos].value }
func (c *memCursor) Err() error    { return nil }
func (c *memCursor) Close() error  { return nil }
