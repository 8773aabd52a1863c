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

package model

import "encoding/binary"

// MetricKey orders first by time (big-endian), then carries the
// metric id as a little-endian tie-breaker that is deliberately NOT
// part of the ordering (spec §3 invariants).
type MetricKey struct {
	Timestamp uint64
	MetricId  uint32
}

const MetricKeyEncodedLen = 8 + 4

func (k MetricKey) Encode() [MetricKeyEncodedLen]byte {
	var out [MetricKeyEncodedLen]byte
	binary.BigEndian.PutUint64(out[0:8], k.Timestamp)
	binary.LittleEndian.PutUint32(out[8:12], k.MetricId)
	return out
}

func DecodeMetricKey(b []byte) (MetricKey, bool) {
	if len(b) != MetricKeyEncodedLen {
		return MetricKey{}, false
	}
	return MetricKey{
		Timestamp: binary.BigEndian.Uint64(b[0:8]),
		MetricId:  binary.LittleEndian.Uint32(b[8:12]),
	}, true
}

// MetricKind selects the merge reduction applied to a metric id's
// un-merged writes (spec §4.1.2): a Counter folds with saturating
// sum, a Gauge folds with max.
type MetricKind uint8

const (
	MetricCounter MetricKind = iota
	MetricGauge
)

// MetricSpec describes one known metric id well enough to merge it.
type MetricSpec struct {
	Name string
	Kind MetricKind
}

// MetricRegistry looks up the MetricSpec for a metric id. An unknown
// id has no entry; callers fall back to last-write-wins.
type MetricRegistry map[uint32]MetricSpec

func (r MetricRegistry) Lookup(id uint32) (MetricSpec, bool) {
	spec, ok := r[id]
	return spec, ok
}
