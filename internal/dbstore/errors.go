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

import "errors"

var (
	// ErrCorruptKey is returned when a stored key fails to decode into
	// its typed form -- the table's own bytes are wrong, not a caller
	// mistake.
	ErrCorruptKey = errors.New("dbstore: corrupt key")

	// ErrNotFound names an absent key. Table.Get reports absence
	// through its found result instead; nothing in this package
	// returns ErrNotFound.
	ErrNotFound = errors.New("dbstore: key not found")

	// ErrClosed names use of an Engine or Table after Close. Nothing in
	// this package checks for that or returns ErrClosed.
	ErrClosed = errors.New("dbstore: store is closed")

	// ErrUnknownTable is returned when a caller names a table not
	// present in Tables.
	ErrUnknownTable = errors.New("dbstore: unknown table")
)
