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
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flamehost/profsink/internal/dbstore"
	"github.com/flamehost/profsink/internal/model"
	"github.com/flamehost/profsink/internal/symstore"
)

type fakeFetcher struct {
	mu    sync.Mutex
	calls []model.FileId
	tree  *symstore.TreeBuilder
	err   error
}

func (f *fakeFetcher) FetchRanges(ctx context.Context, fileId model.FileId, buildId string) (*symstore.TreeBuilder, error) {
	f.mu.Lock()
	f.calls = append(f.calls, fileId)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.tree, nil
}

type fakeSymInserter struct {
	mu      sync.Mutex
	inserts map[model.FileId][]byte
}

func newFakeSymInserter() *fakeSymInserter {
	return &fakeSymInserter{inserts: map[model.FileId][]byte{}}
}

func (f *fakeSymInserter) Insert(id model.FileId, buf []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserts[id] = buf
	return nil
}

func TestControllerEnqueueDedupesByFileId(t *testing.T) {
	store, err := dbstore.OpenMem(nil)
	require.NoError(t, err)
	defer store.Close()

	c := NewController(store, &fakeFetcher{}, 4)
	id := model.FileId{9}
	c.EnqueueDiscovered([]Discovered{
		{FileId: id, Meta: model.ExecutableMeta{SymbStatus: model.NotAttempted()}},
		{FileId: id, Meta: model.ExecutableMeta{SymbStatus: model.NotAttempted()}},
	})
	require.Equal(t, 1, c.PendingLen())
}

func TestControllerEnqueueSkipsInFlight(t *testing.T) {
	store, err := dbstore.OpenMem(nil)
	require.NoError(t, err)
	defer store.Close()

	c := NewController(store, &fakeFetcher{}, 4)
	id := model.FileId{9}
	c.inFlight[id] = true
	c.EnqueueDiscovered([]Discovered{{FileId: id, Meta: model.ExecutableMeta{}}})
	require.Equal(t, 0, c.PendingLen())
}

func TestControllerApplyResultSuccessInsertsAndMarksComplete(t *testing.T) {
	store, err := dbstore.OpenMem(nil)
	require.NoError(t, err)
	defer store.Close()

	id := model.FileId{3}
	require.NoError(t, store.Executables.Insert(id[:], dbstore.EncodeExecutableMeta(model.ExecutableMeta{SymbStatus: model.NotAttempted()})))

	c := NewController(store, &fakeFetcher{}, 4)
	c.inFlight[id] = true

	builder := symstore.NewTreeBuilder()
	builder.AddRange(0x1000, 0x1010, "main", "main.c", "", nil, 0, nil)

	syms := newFakeSymInserter()
	err = c.ApplyResult(syms, taskResult{item: pendingItem{id: id, meta: model.ExecutableMeta{}}, tree: builder})
	require.NoError(t, err)

	require.Contains(t, syms.inserts, id)
	require.False(t, c.inFlight[id])

	raw, found, err := store.Executables.Get(id[:])
	require.NoError(t, err)
	require.True(t, found)
	meta, err := dbstore.DecodeExecutableMeta(raw)
	require.NoError(t, err)
	require.Equal(t, model.SymbComplete, meta.SymbStatus.Tag)
}

func TestControllerApplyResultNotPresentGloballyMarksStatus(t *testing.T) {
	store, err := dbstore.OpenMem(nil)
	require.NoError(t, err)
	defer store.Close()

	id := model.FileId{4}
	require.NoError(t, store.Executables.Insert(id[:], dbstore.EncodeExecutableMeta(model.ExecutableMeta{SymbStatus: model.NotAttempted()})))

	c := NewController(store, &fakeFetcher{}, 4)
	syms := newFakeSymInserter()
	err = c.ApplyResult(syms, taskResult{item: pendingItem{id: id, meta: model.ExecutableMeta{}}, err: ErrNotPresentGlobally})
	require.NoError(t, err)

	raw, found, err := store.Executables.Get(id[:])
	require.NoError(t, err)
	require.True(t, found)
	meta, err := dbstore.DecodeExecutableMeta(raw)
	require.NoError(t, err)
	require.Equal(t, model.SymbNotPresentGlobally, meta.SymbStatus.Tag)
}

func TestControllerFillSlotsRespectsMaxPar(t *testing.T) {
	store, err := dbstore.OpenMem(nil)
	require.NoError(t, err)
	defer store.Close()

	fetcher := &fakeFetcher{tree: symstore.NewTreeBuilder()}
	c := NewController(store, fetcher, 1)
	c.EnqueueDiscovered([]Discovered{
		{FileId: model.FileId{1}, Meta: model.ExecutableMeta{}},
		{FileId: model.FileId{2}, Meta: model.ExecutableMeta{}},
	})

	results := make(chan taskResult, 2)
	c.fillSlots(context.Background(), results)
	require.Equal(t, 1, c.InFlightLen())
	require.Equal(t, 1, c.PendingLen())

	res := <-results
	require.NoError(t, c.ApplyResult(newFakeSymInserter(), res))
}
