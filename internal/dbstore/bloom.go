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
	"sync"

	"github.com/holiman/bloomfilter/v2"
)

// rowBloom is the application-level stand-in for the "bloom filters
// enabled" half of the RandomAccess storage option (spec.md §4.1.1).
// mdbx has no native bloom filter, so Table keeps one in front of its
// RandomAccess tables: a miss here skips the mdbx cursor lookup
// entirely, and a hit falls through to the real read (the filter
// never reports a false negative, only possible false positives).
//
// OpenTable sizes the filter from Table.CountEstimate (at least 65536
// keys) and seeds it with every existing key; it is never resized
// afterwards, so the false-positive rate rises once the table grows
// well past that size. Table.Insert and WriteBatch.Commit add keys
// after their writes commit; Remove does not take keys out, which only
// costs a false positive.
type rowBloom struct {
	mu     sync.Mutex
	filter *bloomfilter.Filter
}

// newRowBloom builds a filter sized for n expected keys at the given
// false-positive rate.
func newRowBloom(n uint64, falsePositiveRate float64) (*rowBloom, error) {
	if n == 0 {
		n = 1
	}
	f, err := bloomfilter.NewOptimal(n, falsePositiveRate)
	if err != nil {
		return nil, err
	}
	return &rowBloom{filter: f}, nil
}

func (b *rowBloom) add(key []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.filter.Add(bloomfilter.NewHash(key))
}

// maybeContains reports false only when key is definitely absent.
func (b *rowBloom) maybeContains(key []byte) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.filter.Contains(bloomfilter.NewHash(key))
}
