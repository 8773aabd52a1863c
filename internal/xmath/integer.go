// Copyright 2017 The go-ethereum Authors
// (original work)
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

// Package xmath holds small integer helpers shared by the storage and
// aggregation layers: overflow-checked and saturating arithmetic, and a
// pluggable random-id source.
package xmath

import (
	"crypto/rand"
	"math/bits"
)

// Integer limit values.
const (
	MaxInt8   = 1<<7 - 1
	MinInt8   = -1 << 7
	MaxInt16  = 1<<15 - 1
	MinInt16  = -1 << 15
	MaxInt32  = 1<<31 - 1
	MinInt32  = -1 << 31
	MaxInt64  = 1<<63 - 1
	MinInt64  = -1 << 63
	MaxUint8  = 1<<8 - 1
	MaxUint16 = 1<<16 - 1
	MaxUint32 = 1<<32 - 1
	MaxUint64 = 1<<64 - 1
)

// SafeAdd returns x+y and reports whether the addition overflowed.
func SafeAdd(x, y uint64) (uint64, bool) {
	sum, carryOut := bits.Add64(x, y, 0)
	return sum, carryOut != 0
}

// SaturatingAddUint64 adds y to x, clamping at MaxUint64 instead of
// wrapping.
func SaturatingAddUint64(x, y uint64) uint64 {
	sum, overflow := SafeAdd(x, y)
	if overflow {
		return MaxUint64
	}
	return sum
}

// MaxInt64Val returns the larger of x and y. Used by the Gauge side of
// the metrics merge operator, which folds with max rather than sum
// because average is not associative across merge batches.
func MaxInt64Val(x, y int64) int64 {
	if x > y {
		return x
	}
	return y
}

// RandUint64 is the default process-local random id source for
// TraceCountId (spec §9 "ID generation"). It is exposed as a variable,
// not a bare function call, so tests can force collisions and assert
// that the kind byte in the key still prevents key aliasing.
var RandUint64 = func() (uint64, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, err
	}
	var v uint64
	for _, b := range buf {
		v = v<<8 | uint64(b)
	}
	return v, nil
}

// CeilDiv divides x by y rounding up; returns 0 when y is 0.
func CeilDiv(x, y int) int {
	if y == 0 {
		return 0
	}
	return (x + y - 1) / y
}
