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

package ingest

import (
	"github.com/flamehost/profsink/internal/dbstore"
	"github.com/flamehost/profsink/internal/model"
)

// ExportProfiles runs one ExportProfiles RPC's worth of work against
// store: Pass 1 resolves every location into a Frame and commits its
// stack_frames/executables writes, then Pass 2 walks every sample and
// commits stack_traces/trace_events. Pass 1's commit happens in full
// before Pass 2 starts so a frame is always resolvable by the time any
// trace referencing it becomes visible (spec.md §5's cross-pass
// ordering guarantee).
func ExportProfiles(store *dbstore.Store, req *ExportRequest) error {
	if req.Dictionary == nil {
		return ErrMissingDictionary
	}

	pass1, err := runPass1(store, req.Dictionary)
	if err != nil {
		return err
	}
	if err := pass1.frameBatch.Commit(); err != nil {
		return err
	}
	if err := commitNewExecutables(store, pass1.newExecutables); err != nil {
		return err
	}

	return runPass2(store, req.Dictionary, req.ResourceProfiles, pass1.frames)
}

// commitNewExecutables batches an Insert for every executable Pass 1
// discovered but didn't already find in storage (spec.md §4.5 pass 1
// step 6). Queued separately from frameBatch because it targets a
// different table and has no merge semantics to preserve ordering
// against.
func commitNewExecutables(store *dbstore.Store, execs map[model.FileId]model.ExecutableMeta) error {
	if len(execs) == 0 {
		return nil
	}
	batch := dbstore.NewWriteBatch(store.Engine)
	for id, meta := range execs {
		batch.Insert(store.Executables, id[:], dbstore.EncodeExecutableMeta(meta))
	}
	return batch.Commit()
}
