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

// VirtAddr is a 64-bit address, or for interpreted frames a line
// number, in an executable's address space.
type VirtAddr uint64

// FrameId identifies a single location: which executable, and where
// in it. Key order is big-endian lexicographic over FileId bytes then
// VirtAddr bytes (spec §3), enforced by Encode below and exercised by
// internal/dbstore's key-ordering property test.
type FrameId struct {
	FileId   FileId
	VirtAddr VirtAddr
}

const FrameIdEncodedLen = 16 + 8

// Encode writes the big-endian key form used by the stack_frames table.
func (f FrameId) Encode() [FrameIdEncodedLen]byte {
	var out [FrameIdEncodedLen]byte
	copy(out[:16], f.FileId[:])
	binary.BigEndian.PutUint64(out[16:], uint64(f.VirtAddr))
	return out
}

// DecodeFrameId parses the big-endian key form written by Encode.
func DecodeFrameId(b []byte) (FrameId, bool) {
	if len(b) != FrameIdEncodedLen {
		return FrameId{}, false
	}
	var f FrameId
	copy(f.FileId[:], b[:16])
	f.VirtAddr = VirtAddr(binary.BigEndian.Uint64(b[16:]))
	return f, true
}

// syntheticAbortFileId is the non-zero FileId used for Abort frames,
// per spec §4.5 pass 1 step 2 ("file_id=(1,1)-synthetic"). It is
// distinguished from the reserved all-zero FileId, which marks the
// absence of an executable identity rather than a specific synthetic
// one.
var syntheticAbortFileId = FileId{0: 1, 15: 1}

// SyntheticAbortFileId returns the FileId used for synthesized Abort
// frames.
func SyntheticAbortFileId() FileId { return syntheticAbortFileId }

// Frame is a single observed program location within a stack trace:
// which executable/address (or synthetic marker) and how it was
// recorded.
type Frame struct {
	Id   FrameId
	Kind FrameKind
}

// FrameMetaData is written only for non-native interpreter frames
// (spec §3); native frames are resolved through the symbol store
// instead (internal/symstore, internal/aggregate symbolization).
type FrameMetaData struct {
	FileName       *string
	FunctionName   *string
	LineNumber     uint32
	FunctionOffset uint32
}
