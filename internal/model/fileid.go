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

// Package model holds the profiling data sink's core value types:
// FileId, VirtAddr, InterpKind, FrameKind, Frame and the trace/metric
// key types. None of these know how to talk to storage; internal/dbstore
// and internal/dbstore/archive own the byte encodings built on top of
// them.
package model

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// FileId is the 128-bit identity of a native executable. The zero
// value is reserved for synthetic frames (e.g. unwinder Abort markers).
type FileId [16]byte

// ErrInvalidFileId is returned when neither the ES form nor the hex
// form of a build id string can be parsed.
var ErrInvalidFileId = errors.New("model: invalid file id")

// ParseFileId accepts either the hyphenated "ES form"
// (xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx, 32 hex digits) or a bare hex
// string. Hex strings shorter than 32 digits are left-padded with
// zeros, matching the common case of a 64-bit synthesized build id
// (see internal/ingest's build-id synthesis) being embedded into a
// 128-bit FileId.
func ParseFileId(s string) (FileId, error) {
	if id, err := parseESForm(s); err == nil {
		return id, nil
	}
	if id, err := parseHexForm(s); err == nil {
		return id, nil
	}
	return FileId{}, fmt.Errorf("%w: %q", ErrInvalidFileId, s)
}

func parseESForm(s string) (FileId, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 5 {
		return FileId{}, ErrInvalidFileId
	}
	lens := [5]int{8, 4, 4, 4, 12}
	var raw [16]byte
	off := 0
	for i, p := range parts {
		if len(p) != lens[i] {
			return FileId{}, ErrInvalidFileId
		}
		n, err := hex.Decode(raw[off:off+len(p)/2], []byte(p))
		if err != nil || n != len(p)/2 {
			return FileId{}, ErrInvalidFileId
		}
		off += len(p) / 2
	}
	return FileId(raw), nil
}

func parseHexForm(s string) (FileId, error) {
	s = strings.TrimPrefix(s, "0x")
	if len(s) == 0 || len(s) > 32 || len(s)%2 != 0 {
		return FileId{}, ErrInvalidFileId
	}
	buf, err := hex.DecodeString(s)
	if err != nil {
		return FileId{}, ErrInvalidFileId
	}
	var id FileId
	copy(id[16-len(buf):], buf)
	return id, nil
}

// IsZero reports whether id is the reserved synthetic-frame FileId.
func (id FileId) IsZero() bool {
	return id == FileId{}
}

// ES renders id in the hyphenated "ES form".
func (id FileId) ES() string {
	b := id[:]
	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:16])
}

// Hex renders id as a bare 32-digit hex string, used for symbol store
// file names (<hex_file_id>.symtree).
func (id FileId) Hex() string {
	return hex.EncodeToString(id[:])
}

func (id FileId) String() string { return id.ES() }
