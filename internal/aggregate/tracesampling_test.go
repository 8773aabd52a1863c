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
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func putStackTrace(t *testing.T, store *dbstore.Store, hash model.TraceHash, frames []model.Frame) {
	t.Helper()
	require.NoError(t, store.StackTraces.Insert(hash[:], dbstore.EncodeFrameList(frames)))
}

func TestTraceSamplingGroupsByHashAndSumsCount(t *testing.T) {
	store, err := dbstore.OpenMem(nil)
	require.NoError(t, err)
	defer store.Close()
	reader := dbstore.NewStoreReader(store, zap.NewNop())

	var h model.TraceHash
	h[0] = 9
	frames := []model.Frame{{Id: model.FrameId{VirtAddr: 42}, Kind: model.RegularFrameKind(model.InterpNative)}}
	putStackTrace(t, store, h, frames)

	putTraceEvent(t, store, 0, 1, model.SampleOnCPU, h, 1)
	putTraceEvent(t, store, 1, 2, model.SampleOnCPU, h, 4)

	samples, err := TraceSampling(reader, store.TraceEvents, 0, 10, model.SampleUnknown)
	require.NoError(t, err)
	require.Len(t, samples, 1)
	require.Equal(t, h, samples[0].Hash)
	require.Equal(t, uint64(5), samples[0].Count)
	require.Equal(t, frames, samples[0].Frames)
}

func TestTraceSamplingSkipsMissingStackTrace(t *testing.T) {
	store, err := dbstore.OpenMem(nil)
	require.NoError(t, err)
	defer store.Close()
	reader := dbstore.NewStoreReader(store, zap.NewNop())

	var missing model.TraceHash
	missing[0] = 5
	putTraceEvent(t, store, 0, 1, model.SampleOnCPU, missing, 3)

	samples, err := TraceSampling(reader, store.TraceEvents, 0, 10, model.SampleUnknown)
	require.NoError(t, err)
	require.Empty(t, samples)
}

func TestTraceSamplingEmptyWindowReturnsEmpty(t *testing.T) {
	store, err := dbstore.OpenMem(nil)
	require.NoError(t, err)
	defer store.Close()
	reader := dbstore.NewStoreReader(store, zap.NewNop())

	samples, err := TraceSampling(reader, store.TraceEvents, 10, 10, model.SampleUnknown)
	require.NoError(t, err)
	require.Empty(t, samples)
}
