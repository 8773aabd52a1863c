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

func TestTopFunctionsSelfOnlyForTrueLeaf(t *testing.T) {
	store, err := dbstore.OpenMem(nil)
	require.NoError(t, err)
	defer store.Close()
	reader := dbstore.NewStoreReader(store, zap.NewNop())
	syms, err := symstore.Open(t.TempDir())
	require.NoError(t, err)

	leafMeta := func(name string) model.FrameId {
		id := model.FrameId{VirtAddr: model.VirtAddr(len(name))}
		id.FileId[0] = byte(len(name))
		fn, file := name, name+".py"
		key := id.Encode()
		require.NoError(t, store.StackFrames.Insert(key[:], dbstore.EncodeFrameMetaData(model.FrameMetaData{FunctionName: &fn, FileName: &file})))
		return id
	}

	leafID := leafMeta("leaf")
	callerID := leafMeta("caller")
	frames := []model.Frame{
		{Id: leafID, Kind: model.RegularFrameKind(model.InterpPython)},
		{Id: callerID, Kind: model.RegularFrameKind(model.InterpPython)},
	}
	var hash model.TraceHash
	hash[0] = 3
	putStackTrace(t, store, hash, frames)
	putTraceEvent(t, store, 0, 1, model.SampleOnCPU, hash, 5)

	stats, err := TopFunctions(reader, store.TraceEvents, syms, 0, 10, model.SampleUnknown, true)
	require.NoError(t, err)
	require.Len(t, stats, 2)

	leafKey := LocationKey(model.Frame{Id: leafID}, SymbolizedRecord{Func: "leaf", File: "leaf.py"})
	callerKey := LocationKey(model.Frame{Id: callerID}, SymbolizedRecord{Func: "caller", File: "caller.py"})

	require.Equal(t, uint64(5), stats[leafKey].SelfCount)
	require.Equal(t, uint64(5), stats[leafKey].WithChildrenCount)
	require.Equal(t, uint64(0), stats[callerKey].SelfCount)
	require.Equal(t, uint64(5), stats[callerKey].WithChildrenCount)
}

func TestTopFunctionsDedupsRecursionWithinOneTrace(t *testing.T) {
	store, err := dbstore.OpenMem(nil)
	require.NoError(t, err)
	defer store.Close()
	reader := dbstore.NewStoreReader(store, zap.NewNop())
	syms, err := symstore.Open(t.TempDir())
	require.NoError(t, err)

	id := model.FrameId{VirtAddr: 1}
	fn, file := "recur", "recur.py"
	key := id.Encode()
	require.NoError(t, store.StackFrames.Insert(key[:], dbstore.EncodeFrameMetaData(model.FrameMetaData{FunctionName: &fn, FileName: &file})))

	frames := []model.Frame{
		{Id: id, Kind: model.RegularFrameKind(model.InterpPython)},
		{Id: id, Kind: model.RegularFrameKind(model.InterpPython)},
	}
	var hash model.TraceHash
	hash[0] = 4
	putStackTrace(t, store, hash, frames)
	putTraceEvent(t, store, 0, 1, model.SampleOnCPU, hash, 2)

	stats, err := TopFunctions(reader, store.TraceEvents, syms, 0, 10, model.SampleUnknown, true)
	require.NoError(t, err)
	key1 := LocationKey(model.Frame{Id: id}, SymbolizedRecord{Func: "recur", File: "recur.py"})
	require.Equal(t, uint64(2), stats[key1].WithChildrenCount)
	require.Equal(t, uint64(2), stats[key1].SelfCount)
}

func TestTopFunctionsEmptyWindowReturnsEmpty(t *testing.T) {
	store, err := dbstore.OpenMem(nil)
	require.NoError(t, err)
	defer store.Close()
	reader := dbstore.NewStoreReader(store, zap.NewNop())
	syms, err := symstore.Open(t.TempDir())
	require.NoError(t, err)

	stats, err := TopFunctions(reader, store.TraceEvents, syms, 5, 5, model.SampleUnknown, true)
	require.NoError(t, err)
	require.Empty(t, stats)
}
