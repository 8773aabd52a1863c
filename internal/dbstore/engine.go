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

// Engine is the ordered byte-map primitive spec.md §4.1 asks the KV
// facade to sit on top of: point get/put/delete, a cursor for ordered
// iteration, one write transaction per commit, and a monotonically
// increasing sequence number per table so change-watching (§4.10) has
// something to poll.
//
// mdbxEngine (engine_mdbx.go) is the production implementation.
// memEngine (engine_mem.go) is a pure-Go, in-process stand-in with the
// same ordering and sequencing semantics, used by tests that want to
// exercise Table/Batch logic without a real data directory.
type Engine interface {
	// CreateTable ensures the named table exists; safe to call every
	// Open.
	CreateTable(table string) error

	// View runs fn against a read-only snapshot.
	View(fn func(tx ReadTx) error) error

	// Update runs fn inside a single write transaction; the whole
	// transaction commits atomically or not at all.
	Update(fn func(tx WriteTx) error) error

	// Close releases the engine's resources. Safe to call once.
	Close() error
}

// ReadTx is the read side of a transaction: ordered point lookups and
// cursor iteration.
type ReadTx interface {
	Get(table string, key []byte) (value []byte, found bool, err error)
	// Cursor returns keys and values in ascending key order, starting
	// at or after from (nil means "from the beginning").
	Cursor(table string, from []byte) (Cursor, error)
	// Seq returns the table's current change sequence number.
	Seq(table string) (uint64, error)
}

// WriteTx extends ReadTx with mutation. Put/Delete take effect
// immediately within the transaction; Seq for the affected table is
// bumped by exactly one per call, matching "every committed write
// advances the counter" (spec.md §4.10).
type WriteTx interface {
	ReadTx
	Put(table string, key, value []byte) error
	Delete(table string, key []byte) error
}

// Cursor walks a table's rows in ascending key order. Callers must
// call Close when done.
type Cursor interface {
	Next() bool
	Key() []byte
	Value() []byte
	Err() error
	Close() error
}
