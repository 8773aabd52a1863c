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

package extract

import (
	"debug/dwarf"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHighpcHandlesOffsetAndAbsoluteForms(t *testing.T) {
	// DWARF4+ producers may encode AttrHighpc either as an absolute
	// address (>= lowpc) or as a byte length added to lowpc; both must
	// resolve to the same end address here.
	low := uint64(0x1000)

	absolute := &dwarf.Entry{
		Field: []dwarf.Field{
			{Attr: dwarf.AttrHighpc, Val: uint64(0x1040)},
		},
	}
	end, ok := highpc(absolute, low)
	require.True(t, ok)
	require.Equal(t, uint64(0x1040), end)

	asOffset := &dwarf.Entry{
		Field: []dwarf.Field{
			{Attr: dwarf.AttrHighpc, Val: uint64(0x40)},
		},
	}
	end, ok = highpc(asOffset, low)
	require.True(t, ok)
	require.Equal(t, uint64(0x1040), end)

	missing := &dwarf.Entry{}
	_, ok = highpc(missing, low)
	require.False(t, ok)
}
