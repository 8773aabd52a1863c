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
	"encoding/binary"
	"fmt"

	"github.com/erigontech/mdbx-go/mdbx"
)

// seqRowKey is the key of a table's sentinel "__seq__" row. mdbx has no built-in row-count/sequence primitive, so each
// table keeps its own monotonically increasing counter stored as a
// plain 8-byte big-endian value next to its data, bumped inside the
// same write transaction as every Put/Delete so seq reads are never
// stale relative to committed data.
const seqRowKey = "\x00__seq__"

// mdbxEngine is the production Engine, one mdbx environment holding
// one DBI per table plus the table's seq row.
type mdbxEngine struct {
	env  *mdbx.Env
	dbis map[string]mdbx.DBI
}

// OpenMDBX opens (creating if necessary) an mdbx environment rooted
// at dir, sized for maxTables DBIs.
func OpenMDBX(dir string, maxTables int) (*mdbxEngine, error) {
	env, err := mdbx.NewEnv()
	if err != nil {
		return nil, newStorageFailure("new_env", err)
	}
	if err := env.SetOption(mdbx.OptMaxDB, uint64(maxTables)); err != nil {
		return nil, newStorageFailure("set_max_db", err)
	}
	if err := env.Open(dir, mdbx.NoSubdir|mdbx.Coalesce|mdbx.LifoReclaim, 0o644); err != nil {
		return nil, newStorageFailure(fmt.Sprintf("open %s", dir), err)
	}
	return &mdbxEngine{env: env, dbis: map[string]mdbx.DBI{}}, nil
}

func (e *mdbxEngine) CreateTable(table string) error {
	if _, ok := e.dbis[table]; ok {
		return nil
	}
	return e.env.Update(func(txn *mdbx.Txn) error {
		dbi, err := txn.OpenDBISimple(table, mdbx.Create)
		if err != nil {
			return fmt.Errorf("dbstore: open dbi %s: %w", table, err)
		}
		e.dbis[table] = dbi
		return nil
	})
}

func (e *mdbxEngine) dbi(table string) (mdbx.DBI, error) {
	dbi, ok := e.dbis[table]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	return dbi, nil
}

func (e *mdbxEngine) View(fn func(tx ReadTx) error) error {
	err := e.env.View(func(txn *mdbx.Txn) error {
		return fn(&mdbxTx{engine: e, txn: txn})
	})
	if err != nil {
		return newStorageFailure("view", err)
	}
	return nil
}

func (e *mdbxEngine) Update(fn func(tx WriteTx) error) error {
	err := e.env.Update(func(txn *mdbx.Txn) error {
		return fn(&mdbxTx{engine: e, txn: txn})
	})
	if err != nil {
		return newStorageFailure("update", err)
	}
	return nil
}

func (e *mdbxEngine) Close() error {
	e.env.Close()
	return nil
}

type mdbxTx struct {
	engine *mdbxEngine
	txn    *mdbx.Txn
}

func (t *mdbxTx) Get(table string, key []byte) ([]byte, bool, error) {
	dbi, err := t.engine.dbi(table)
	if err != nil {
		return nil, false, err
	}
	v, err := t.txn.Get(dbi, key)
	if mdbx.IsNotFound(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (t *mdbxTx) Put(table string, key, value []byte) error {
	dbi, err := t.engine.dbi(table)
	if err != nil {
		return err
	}
	if err := t.txn.Put(dbi, key, value, 0); err != nil {
		return err
	}
	return t.bumpSeq(dbi)
}

func (t *mdbxTx) Delete(table string, key []byte) error {
	dbi, err := t.engine.dbi(table)
	if err != nil {
		return err
	}
	if err := t.txn.Del(dbi, key, nil); err != nil && !mdbx.IsNotFound(err) {
		return err
	}
	return t.bumpSeq(dbi)
}

func (t *mdbxTx) bumpSeq(dbi mdbx.DBI) error {
	cur, err := t.txn.Get(dbi, []byte(seqRowKey))
	var n uint64
	if err == nil {
		n = binary.BigEndian.Uint64(cur)
	} else if !mdbx.IsNotFound(err) {
		return err
	}
	n++
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], n)
	return t.txn.Put(dbi, []byte(seqRowKey), buf[:], 0)
}

func (t *mdbxTx) Seq(table string) (uint64, error) {
	dbi, err := t.engine.dbi(table)
	if err != nil {
		return 0, err
	}
	v, err := t.txn.Get(dbi, []byte(seqRowKey))
	if mdbx.IsNotFound(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(v), nil
}

func (t *mdbxTx) Cursor(table string, from []byte) (Cursor, error) {
	dbi, err := t.engine.dbi(table)
	if err != nil {
		return nil, err
	}
	cur, err := t.txn.OpenCursor(dbi)
	if err != nil {
		return nil, err
	}
	return &mdbxCursor{cur: cur, from: from, first: true}, nil
}

// mdbxCursor skips the reserved seq row transparently so table-level
// iteration never sees it.
type mdbxCursor struct {
	cur   *mdbx.Cursor
	from  []byte
	first bool
	key   []byte
	val   []byte
	err   error
}

func (c *mdbxCursor) Next() bool {
	for {
		var k, v []byte
		var err error
		if c.first {
			c.first = false
			if c.from != nil {
				k, v, err = c.cur.Get(c.from, nil, mdbx.SetRange)
			} else {
				k, v, err = c.cur.Get(nil, nil, mdbx.First)
			}
		} else {
			k, v, err = c.cur.Get(nil, nil, mdbx.Next)
		}
		if mdbx.IsNotFound(err) {
			return false
		}
		if err != nil {
			c.err = err
			return false
		}
		if string(k) == seqRowKey {
			continue
		}
		c.key, c.val = k, v
		return true
	}
}

func (c *mdbxCursor) Key() []byte   { return c.key }
func (c *mdbxCursor) Value() []byte { return c.val }
func (c *mdbxCursor) Err() error    { return c.err }
func (c *mdbxCursor) Close() error  { c.cur.Close(); return nil }
