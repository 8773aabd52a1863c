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
	"debug/elf"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flamehost/profsink/internal/dbstore"
	"github.com/flamehost/profsink/internal/model"
)

// IngestLocalExecutable's extraction path is exercised end-to-end by
// internal/extract's own tests against real DWARF data; here we only
// need to confirm the failure path marks SymbTempError instead of
// propagating the extractor's error, since a zero-value *elf.File has
// no sections, so no DWARF, and always takes that path through
// extract.Default.
func TestIngestLocalExecutableNoDWARFMarksTempError(t *testing.T) {
	store, err := dbstore.OpenMem(nil)
	require.NoError(t, err)
	defer store.Close()

	id := model.FileId{7}
	require.NoError(t, store.Executables.Insert(id[:], dbstore.EncodeExecutableMeta(model.ExecutableMeta{SymbStatus: model.NotAttempted()})))

	syms := newFakeSymInserter()
	progress := &LocalIngestProgress{}

	err = IngestLocalExecutable(store, syms, &elf.File{}, id, model.ExecutableMeta{}, progress)
	require.NoError(t, err)

	raw, found, err := store.Executables.Get(id[:])
	require.NoError(t, err)
	require.True(t, found)
	meta, err := dbstore.DecodeExecutableMeta(raw)
	require.NoError(t, err)
	require.Equal(t, model.SymbTempError, meta.SymbStatus.Tag)
	require.Empty(t, syms.inserts)
}
