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

package aggregate

import (
	"testing"

	"github.com/flamehost/profsink/internal/dbstore"
	"github.com/flamehost/profsink/internal/model"
	"github.com/flamehost/profsink/internal/symstore"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSymbolizeFrameAbortIsUnsymbolized(t *testing.T) {
	store, err := dbstore.OpenMem(nil)
	require.NoError(t, err)
	defer store.Close()
	reader := dbstore.NewStoreReader(store, zap.NewNop())
	syms, err := symstore.Open(t.TempDir())
	require.NoError(t, err)

	recs, err := SymbolizeFrame(reader, syms, model.Frame{Kind: model.AbortFrameKind()}, true)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.True(t, recs[0].Unsymbolized)
}

func TestSymbolizeFrameInterpreterLooksUpFrameMetaData(t *testing.T) {
	store, err := dbstore.OpenMem(nil)
	require.NoError(t, err)
	defer store.Close()
	reader := dbstore.NewStoreReader(store, zap.NewNop())
	syms, err := symstore.Open(t.TempDir())
	require.NoError(t, err)

	id := model.FrameId{VirtAddr: 12}
	funcName, fileName := "handler", "app.py"
	key := id.Encode()
	require.NoError(t, store.StackFrames.Insert(key[:], dbstore.EncodeFrameMetaData(model.FrameMetaData{
		FunctionName: &funcName, FileName: &fileName, LineNumber: 7,
	})))

	recs, err := SymbolizeFrame(reader, syms, model.Frame{Id: id, Kind: model.RegularFrameKind(model.InterpPython)}, true)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, "handler", recs[0].Func)
	require.Equal(t, "app.py", recs[0].File)
	require.Equal(t, uint32(7), recs[0].Line)
}

func TestSymbolizeFrameInterpreterMissingIsUnsymbolized(t *testing.T) {
	store, err := dbstore.OpenMem(nil)
	require.NoError(t, err)
	defer store.Close()
	reader := dbstore.NewStoreReader(store, zap.NewNop())
	syms, err := symstore.Open(t.TempDir())
	require.NoError(t, err)

	recs, err := SymbolizeFrame(reader, syms, model.Frame{Kind: model.RegularFrameKind(model.InterpJvm)}, true)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.True(t, recs[0].Unsymbolized)
}

func TestSymbolizeFrameNativeResolvesInlineChainLeafFirst(t *testing.T) {
	store, err := dbstore.OpenMem(nil)
	require.NoError(t, err)
	defer store.Close()
	reader := dbstore.NewStoreReader(store, zap.NewNop())
	syms, err := symstore.Open(t.TempDir())
	require.NoError(t, err)

	var fileID model.FileId
	fileID[0] = 1

	callLine := uint32(20)
	b := symstore.NewTreeBuilder()
	b.AddRange(0, 100, "inner", "inner.c", "outer.c", &callLine, 0, []symstore.LineEntry{{Offset: 0, Line: 5}})
	b.AddRange(0, 100, "outer", "outer.c", "", nil, 1, nil)
	require.NoError(t, syms.Insert(fileID, b.Encode()))

	f := model.Frame{Id: model.FrameId{FileId: fileID, VirtAddr: 10}, Kind: model.RegularFrameKind(model.InterpNative)}

	recs, err := SymbolizeFrame(reader, syms, f, true)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.Equal(t, "inner", recs[0].Func)
	require.Equal(t, "inner.c", recs[0].File)
	require.Equal(t, uint32(5), recs[0].Line)
	require.Equal(t, "outer", recs[1].Func)
	require.Equal(t, "outer.c", recs[1].File)
	require.Equal(t, uint32(20), recs[1].Line)

	onlyLeaf, err := SymbolizeFrame(reader, syms, f, false)
	require.NoError(t, err)
	require.Len(t, onlyLeaf, 1)
	require.Equal(t, "inner", onlyLeaf[0].Func)
}

func TestSymbolizeFrameNativeNoSymbolFileIsUnsymbolized(t *testing.T) {
	store, err := dbstore.OpenMem(nil)
	require.NoError(t, err)
	defer store.Close()
	reader := dbstore.NewStoreReader(store, zap.NewNop())
	syms, err := symstore.Open(t.TempDir())
	require.NoError(t, err)

	f := model.Frame{Id: model.FrameId{VirtAddr: 10}, Kind: model.RegularFrameKind(model.InterpNative)}
	recs, err := SymbolizeFrame(reader, syms, f, true)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.True(t, recs[0].Unsymbolized)
}
