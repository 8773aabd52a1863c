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
	"sync/atomic"

	lru "github.com/elastic/go-freelru"
	"github.com/zeebo/xxh3"
)

// hashEncodedKey is the string-key hash used for every table's value
// cache. xxh3 is the fastest of the hash functions go-freelru was
// benchmarked against for string/byte-slice keys.
func hashEncodedKey(k string) uint32 {
	return uint32(xxh3.HashString(k))
}

// valueCache is the per-table "encoded_key -> encoded_value" LRU
// described in spec.md §4.1 ("The cache stores serialized bytes, not
// decoded values, to coexist with zero-copy handles"). A zero-capacity
// cache disables caching entirely, matching "zero disables".
type valueCache struct {
	lru *lru.SyncedLRU[string, []byte]

	hits   atomic.Uint64
	misses atomic.Uint64
}

func newValueCache(capacity uint32) (*valueCache, error) {
	if capacity == 0 {
		return &valueCache{}, nil
	}
	l, err := lru.NewSynced[string, []byte](capacity, hashEncodedKey)
	if err != nil {
		return nil, err
	}
	return &valueCache{lru: l}, nil
}

func (c *valueCache) get(key []byte) ([]byte, bool) {
	if c.lru == nil {
		return nil, false
	}
	v, ok := c.lru.Get(string(key))
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return v, ok
}

// stats returns cumulative hit/miss counts, read by internal/metrics
// to derive a per-table cache hit ratio.
func (c *valueCache) stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *valueCache) put(key, value []byte) {
	if c.lru == nil {
		return
	}
	c.lru.Add(string(key), value)
}

func (c *valueCache) remove(key []byte) {
	if c.lru == nil {
		return
	}
	c.lru.Remove(string(key))
}

// clear drops every entry. Called after a batch commit, which spec.md
// §4.1 allows to invalidate coarsely rather than track per-key.
func (c *valueCache) clear() {
	if c.lru == nil {
		return
	}
	c.lru.Purge()
}
