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
	"time"

	"github.com/flamehost/profsink/internal/dbstore"
	"github.com/flamehost/profsink/internal/model"
)

// Discovered is one executable the scan wants symbolized.
type Discovered struct {
	FileId model.FileId
	Meta   model.ExecutableMeta
}

// Scan implements spec.md §4.6's discovery step: every SYMB_FREQ tick,
// walk the executables table and collect every entry whose status is
// NotAttempted, or TempError whose LastAttempt is older than
// retryFreq relative to now. Entries already in inFlight are skipped
// so the controller never double-schedules a fetch (testable property
// 11: a TempError 31s old is re-discovered, one 29s old is not).
func Scan(store *dbstore.Store, now time.Time, retryFreq time.Duration, inFlight map[model.FileId]bool) ([]Discovered, error) {
	var out []Discovered
	err := store.Executables.Range(nil, func(key, value []byte) (bool, error) {
		var id model.FileId
		if len(key) != len(id) {
			return true, nil
		}
		copy(id[:], key)
		if inFlight[id] {
			return true, nil
		}

		meta, err := dbstore.DecodeExecutableMeta(value)
		if err != nil {
			return false, err
		}

		switch meta.SymbStatus.Tag {
		case model.SymbNotAttempted:
			out = append(out, Discovered{FileId: id, Meta: meta})
		case model.SymbTempError:
			if now.Sub(meta.SymbStatus.LastAttempt) > retryFreq {
				out = append(out, Discovered{FileId: id, Meta: meta})
			}
		}
		return true, nil
	})
	return out, err
}
