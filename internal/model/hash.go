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

import (
	"encoding/binary"

	"github.com/zeebo/xxh3"
)

// HashFrames computes the 128-bit trace fingerprint of an ordered
// frame list (spec §3 invariants: "frame-by-frame, interpreter-neutral
// order: leaf first"). Callers are expected to already hold the frame
// list in leaf-first order, matching how internal/ingest assembles it
// from the location-index chain.
func HashFrames(frames []Frame) TraceHash {
	var h xxh3.Hasher128
	var scratch [FrameIdEncodedLen + 1]byte
	for _, f := range frames {
		enc := f.Id.Encode()
		copy(scratch[:FrameIdEncodedLen], enc[:])
		scratch[FrameIdEncodedLen] = f.Kind.Raw()
		_, _ = h.Write(scratch[:])
	}
	sum := h.Sum128()
	return TraceHash(sum.Bytes())
}

// Hash64 is the 64-bit xxh3 variant used to synthesize a build id when
// a mapping carries no build-id attribute (spec §4.5 pass 1 step 3).
func Hash64(data []byte) uint64 {
	return xxh3.Hash(data)
}

// AppendLine64 appends a little-endian (line, column) pair to buf, a
// helper for callers assembling the build-id synthesis input exactly
// as spec.md §4.5 describes it ("line.line (little-endian), and
// line.column (little-endian)").
func AppendLine64(buf []byte, line, column uint32) []byte {
	var tmp [8]byte
	binary.LittleEndian.PutUint32(tmp[0:4], line)
	binary.LittleEndian.PutUint32(tmp[4:8], column)
	return append(buf, tmp[:]...)
}
