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
	"path/filepath"

	"github.com/gofrs/flock"
)

// DirLock guards a data directory against a second process opening it
// concurrently. mdbx itself tolerates multiple processes, but the
// symbolizer's symtree rename protocol (internal/symstore) assumes a
// single writer per directory, so the lock is taken once at startup
// and held for the process lifetime.
type DirLock struct {
	fl *flock.Flock
}

// LockDir acquires an exclusive, non-blocking lock on dir/LOCK.
func LockDir(dir string) (*DirLock, error) {
	fl := flock.New(filepath.Join(dir, "LOCK"))
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("dbstore: lock %s: %w", dir, err)
	}
	if !locked {
		return nil, fmt.Errorf("dbstore: data directory %s is already locked by another process", dir)
	}
	return &DirLock{fl: fl}, nil
}

func (l *DirLock) Unlock() error {
	return l.fl.Unlock()
}
