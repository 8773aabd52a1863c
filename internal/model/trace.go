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

// TraceHash is the 128-bit xxh3 fingerprint of an ordered frame list
// (spec §3; computed by internal/ingest using github.com/zeebo/xxh3).
type TraceHash [16]byte

func (h TraceHash) String() string { return hexString(h[:]) }

// SampleKind records how a sample was recorded. Mixed only exists as
// a UI/aggregation pseudo-kind (spec GLOSSARY); it is never written to
// storage.
type SampleKind uint8

const (
	SampleOnCPU SampleKind = iota
	SampleOffCPU
	SampleUnknown
	SampleMixed
)

func SampleKindFromTypeUnit(typ, unit string) SampleKind {
	switch {
	case typ == "samples" && unit == "count":
		return SampleOnCPU
	case typ == "events" && unit == "nanoseconds":
		return SampleOffCPU
	default:
		return SampleUnknown
	}
}

func (k SampleKind) String() string {
	switch k {
	case SampleOnCPU:
		return "on-cpu"
	case SampleOffCPU:
		return "off-cpu"
	case SampleMixed:
		return "mixed"
	default:
		return "unknown"
	}
}

// TraceCountId is the trace_events key: big-endian timestamp first so
// the table is ordered by time (spec §3), then a little-endian random
// id (not an ordering field, spec §4.1's key-encoding contract), then
// the sample kind byte so per-kind range scans stay efficient
// (spec §9 "schema drift" open question, fixed in the key).
type TraceCountId struct {
	Timestamp uint64
	Id        uint64
	Kind      SampleKind
}

const TraceCountIdEncodedLen = 8 + 8 + 1

func (k TraceCountId) Encode() [TraceCountIdEncodedLen]byte {
	var out [TraceCountIdEncodedLen]byte
	binary.BigEndian.PutUint64(out[0:8], k.Timestamp)
	binary.LittleEndian.PutUint64(out[8:16], k.Id)
	out[16] = byte(k.Kind)
	return out
}

func DecodeTraceCountId(b []byte) (TraceCountId, bool) {
	if len(b) != TraceCountIdEncodedLen {
		return TraceCountId{}, false
	}
	return TraceCountId{
		Timestamp: binary.BigEndian.Uint64(b[0:8]),
		Id:        binary.LittleEndian.Uint64(b[8:16]),
		Kind:      SampleKind(b[16]),
	}, true
}

// TraceCount is the trace_events value.
type TraceCount struct {
	Timestamp     uint64
	TraceHash     TraceHash
	Count         uint64
	Comm          string
	PodName       *string
	ContainerName *string
}

func hexString(b []byte) string {
	const digits = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = digits[c>>4]
		out[i*2+1] = digits[c&0xF]
	}
	return string(out)
}
