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

// WriteBatch collects inserts and removes across one or more tables
// and commits them as a single engine transaction (spec.md §4.1:
// "batched_insert() returns a write batch object collecting
// inserts/merges committed atomically"). Per-key cache invalidation
// is not tracked across a batch; Commit clears every table the batch
// touched, matching "on commit, the cache is cleared (coarse)", and
// adds every inserted key to its table's bloom filter.
type WriteBatch struct {
	engine  Engine
	ops     []func(tx WriteTx) error
	touched map[*Table]struct{}
	added   []func()
}

func NewWriteBatch(engine Engine) *WriteBatch {
	return &WriteBatch{engine: engine, touched: map[*Table]struct{}{}}
}

func (b *WriteBatch) Insert(table *Table, key, value []byte) {
	b.touched[table] = struct{}{}
	b.ops = append(b.ops, func(tx WriteTx) error {
		_, err := table.writeTx(tx, key, value)
		return err
	})
	if table.bloom != nil {
		k := append([]byte(nil), key...)
		b.added = append(b.added, func() { table.bloom.add(k) })
	}
}

func (b *WriteBatch) Remove(table *Table, key []byte) {
	b.touched[table] = struct{}{}
	k := append([]byte(nil), key...)
	b.ops = append(b.ops, func(tx WriteTx) error {
		return tx.Delete(table.name, k)
	})
}

// Commit runs every queued operation inside one transaction. If any
// operation fails the whole batch is rolled back and no table's cache
// is touched.
func (b *WriteBatch) Commit() error {
	err := b.engine.Update(func(tx WriteTx) error {
		for _, op := range b.ops {
			if err := op(tx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	for table := range b.touched {
		table.cache.clear()
	}
	for _, add := range b.added {
		add()
	}
	return nil
}
