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
	"sync/atomic"
	"time"

	"github.com/flamehost/profsink/internal/dbstore"
	"github.com/flamehost/profsink/internal/extract"
	"github.com/flamehost/profsink/internal/model"
	"github.com/flamehost/profsink/internal/symstore"
)

// LocalIngestProgress is spec.md §4.6's "local ingest task... reports
// live counters (ranges extracted / ranges ingested)" -- an
// atomically updated struct, polled rather than pushed so the UI/RPC
// layer can read it from any goroutine without a lock.
type LocalIngestProgress struct {
	RangesExtracted atomic.Uint64
	RangesIngested  atomic.Uint64
}

// IngestLocalExecutable implements the "local ingest task" variant of
// spec.md §4.6: extract symbol ranges from a user-dropped object file
// with the priority-ordered multi-source extractor, then insert the
// built tree through the same path a remote fetch uses, updating meta
// with the result. progress.RangesExtracted advances once per range as
// the extracted ranges are added to the tree builder, after extraction
// has finished; progress.RangesIngested is added once, after the tree
// is inserted.
func IngestLocalExecutable(store *dbstore.Store, syms SymInserter, f *elf.File, id model.FileId, meta model.ExecutableMeta, progress *LocalIngestProgress) error {
	ranges, err := extract.Default.Extract(f)
	if err != nil {
		meta.SymbStatus = model.TempError(time.Now())
		key := id
		return store.Executables.Insert(key[:], dbstore.EncodeExecutableMeta(meta))
	}

	builder := symstore.NewTreeBuilder()
	for _, rg := range ranges {
		builder.AddRange(rg.AddrStart, rg.AddrEnd, rg.Func, rg.File, rg.CallFile, rg.CallLine, rg.Depth, rg.LineTable)
		progress.RangesExtracted.Add(1)
	}

	buf := builder.Encode()
	if err := syms.Insert(id, buf); err != nil {
		return err
	}
	progress.RangesIngested.Add(uint64(builder.Len()))

	meta.SymbStatus = model.Complete(uint32(builder.Len()))
	key := id
	return store.Executables.Insert(key[:], dbstore.EncodeExecutableMeta(meta))
}
