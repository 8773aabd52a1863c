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

package symbolizer

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flamehost/profsink/internal/symstore"
)

func encodeTestRange(buf *bytes.Buffer, addrStart, addrEnd uint64, funcName, file, callFile string, callLine *uint32, depth uint16, lineTable []symstore.LineEntry) {
	buf.WriteByte(recordKindRange)
	var u64 [8]byte
	binary.LittleEndian.PutUint64(u64[:], addrStart)
	buf.Write(u64[:])
	binary.LittleEndian.PutUint64(u64[:], addrEnd)
	buf.Write(u64[:])
	writeStr := func(s string) {
		var u32 [4]byte
		binary.LittleEndian.PutUint32(u32[:], uint32(len(s)))
		buf.Write(u32[:])
		buf.WriteString(s)
	}
	writeStr(funcName)
	writeStr(file)
	writeStr(callFile)
	if callLine == nil {
		buf.WriteByte(0)
	} else {
		buf.WriteByte(1)
		var u32 [4]byte
		binary.LittleEndian.PutUint32(u32[:], *callLine)
		buf.Write(u32[:])
	}
	var u32 [4]byte
	binary.LittleEndian.PutUint32(u32[:], uint32(depth))
	buf.Write(u32[:])
	binary.LittleEndian.PutUint32(u32[:], uint32(len(lineTable)))
	buf.Write(u32[:])
	for _, le := range lineTable {
		binary.LittleEndian.PutUint32(u32[:], le.Offset)
		buf.Write(u32[:])
		binary.LittleEndian.PutUint32(u32[:], le.Line)
		buf.Write(u32[:])
	}
}

func TestDecodeRangeStreamBuildsTree(t *testing.T) {
	var buf bytes.Buffer
	encodeTestRange(&buf, 0x1000, 0x1010, "main", "main.c", "", nil, 0, []symstore.LineEntry{{Offset: 0, Line: 5}})
	encodeTestRange(&buf, 0x2000, 0x2020, "helper", "helper.c", "", nil, 0, nil)

	builder, err := decodeRangeStream(&buf)
	require.NoError(t, err)
	require.Equal(t, 2, builder.Len())
}

func TestDecodeRangeStreamRejectsReturnPad(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(recordKindReturnPad)

	_, err := decodeRangeStream(&buf)
	require.ErrorIs(t, err, ErrReturnPad)
}

func TestDecodeRangeStreamEmptyStreamIsEmptyTree(t *testing.T) {
	builder, err := decodeRangeStream(&bytes.Buffer{})
	require.NoError(t, err)
	require.Equal(t, 0, builder.Len())
}
