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
	"github.com/klauspost/compress/zstd"
)

// Table is the typed-storage facade spec.md §4.1 describes: ordered
// get/insert/remove over one engine table, with the value cache,
// bloom filter, compression, and merge-operator behavior selected by
// TableCfgItem layered on top of the bare Engine.
type Table struct {
	engine Engine
	name   string
	cfg    TableCfgItem
	cache  *valueCache
	bloom  *rowBloom
	merge  MergeFunc

	zenc *zstd.Encoder
	zdec *zstd.Decoder
}

// OpenTable wires a Table over an already-created engine table name.
// merge may be nil for tables without TableCfgItem.HasMerge.
func OpenTable(engine Engine, name string, cfg TableCfgItem, merge MergeFunc) (*Table, error) {
	cache, err := newValueCache(cfg.CacheEntries)
	if err != nil {
		return nil, err
	}
	t := &Table{engine: engine, name: name, cfg: cfg, cache: cache, merge: merge}

	if cfg.Access == RandomAccess {
		n, err := t.CountEstimate()
		if err != nil {
			return nil, err
		}
		if n < 1<<16 {
			n = 1 << 16
		}
		b, err := newRowBloom(n, 0.01)
		if err != nil {
			return nil, err
		}
		err = t.Range(nil, func(k, _ []byte) (bool, error) {
			b.add(k)
			return true, nil
		})
		if err != nil {
			return nil, err
		}
		t.bloom = b
	}
	if cfg.Access == SequentialRead {
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, err
		}
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		t.zenc, t.zdec = enc, dec
	}
	return t, nil
}

func (t *Table) compress(v []byte) []byte {
	if t.zenc == nil {
		return v
	}
	return t.zenc.EncodeAll(v, make([]byte, 0, len(v)))
}

func (t *Table) decompress(v []byte) ([]byte, error) {
	if t.zdec == nil {
		return v, nil
	}
	return t.zdec.DecodeAll(v, nil)
}

// Get returns the decoded-ready bytes for key, consulting the value
// cache first and the bloom filter before falling through to the
// engine on a RandomAccess table.
func (t *Table) Get(key []byte) ([]byte, bool, error) {
	if cached, ok := t.cache.get(key); ok {
		return cached, true, nil
	}
	if t.bloom != nil && !t.bloom.maybeContains(key) {
		return nil, false, nil
	}

	var value []byte
	var found bool
	err := t.engine.View(func(tx ReadTx) error {
		v, ok, err := tx.Get(t.name, key)
		if err != nil {
			return err
		}
		value, found = v, ok
		return nil
	})
	if err != nil || !found {
		return nil, false, err
	}
	value, err = t.decompress(value)
	if err != nil {
		return nil, false, err
	}
	t.cache.put(key, value)
	return value, true, nil
}

// Insert stores value under key, applying the merge operator when the
// table has one (spec.md §4.1.2: "the merge operator receives all
// accumulated un-merged writes at read time" -- here folded eagerly,
// see merge.go's doc comment for why that is observably identical).
// The cache and bloom filter are only updated once the write commits.
func (t *Table) Insert(key, value []byte) error {
	var toStore []byte
	err := t.engine.Update(func(tx WriteTx) error {
		v, err := t.writeTx(tx, key, value)
		toStore = v
		return err
	})
	if err != nil {
		return err
	}
	t.cache.put(key, toStore)
	if t.bloom != nil {
		t.bloom.add(key)
	}
	return nil
}

// writeTx performs the merge-and-put inside an already-open
// transaction, returning the decoded value that was stored. It never
// touches the cache or bloom filter itself: a lone Insert updates them
// after its transaction commits, and a WriteBatch defers to Commit's
// coarse cache clear instead, since an earlier op in the same batch
// could still fail and roll the whole transaction back.
func (t *Table) writeTx(tx WriteTx, key, value []byte) ([]byte, error) {
	toStore := value
	if t.merge != nil {
		prev, found, err := tx.Get(t.name, key)
		if err != nil {
			return nil, err
		}
		if found {
			prev, err = t.decompress(prev)
			if err != nil {
				return nil, err
			}
		} else {
			prev = nil
		}
		merged, err := t.merge(key, prev, [][]byte{value})
		if err != nil {
			return nil, err
		}
		toStore = merged
	}
	if err := tx.Put(t.name, key, t.compress(toStore)); err != nil {
		return nil, err
	}
	return toStore, nil
}

// Remove deletes key. Per spec.md §4.1, entries are otherwise
// append-only or upsert-only; Remove exists for executable/frame
// bookkeeping, not bulk event cleanup.
func (t *Table) Remove(key []byte) error {
	err := t.engine.Update(func(tx WriteTx) error {
		return tx.Delete(t.name, key)
	})
	if err != nil {
		return err
	}
	t.cache.remove(key)
	return nil
}

// Range calls fn with every decoded-ready (key, value) pair in
// ascending key order starting at or after from (nil for the start of
// the table), stopping early if fn returns false or an error.
func (t *Table) Range(from []byte, fn func(key, value []byte) (bool, error)) error {
	return t.engine.View(func(tx ReadTx) error {
		cur, err := tx.Cursor(t.name, from)
		if err != nil {
			return err
		}
		defer cur.Close()
		for cur.Next() {
			v, err := t.decompress(cur.Value())
			if err != nil {
				return err
			}
			cont, err := fn(cur.Key(), v)
			if err != nil {
				return err
			}
			if !cont {
				break
			}
		}
		return cur.Err()
	})
}

// CountEstimate walks the table once to count rows. Used only at
// startup (bloom-filter sizing) and by diagnostics; not on any hot
// ingestion path.
func (t *Table) CountEstimate() (uint64, error) {
	var n uint64
	err := t.Range(nil, func(_, _ []byte) (bool, error) {
		n++
		return true, nil
	})
	return n, err
}

// CacheStats returns this table's cumulative value-cache hit/miss
// counts, used by internal/metrics to report a cache hit ratio.
func (t *Table) CacheStats() (hits, misses uint64) {
	return t.cache.stats()
}

// LastSeq returns the table's current change-sequence number (used by
// internal/changewatch).
func (t *Table) LastSeq() (uint64, error) {
	var seq uint64
	err := t.engine.View(func(tx ReadTx) error {
		s, err := tx.Seq(t.name)
		seq = s
		return err
	})
	return seq, err
}
