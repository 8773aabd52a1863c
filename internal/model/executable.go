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

package model

import "time"

// SymbStatusTag discriminates the SymbStatus variants.
type SymbStatusTag uint8

const (
	SymbNotAttempted SymbStatusTag = iota
	SymbTempError
	SymbNotPresentGlobally
	SymbComplete
)

// SymbStatus is the symbolization state machine for one executable
// (spec §3, driven by internal/symbolizer per §4.6/§7).
type SymbStatus struct {
	Tag SymbStatusTag

	// LastAttempt is set for SymbTempError; internal/symbolizer's
	// discovery scan re-queues an executable once this is older than
	// SYMB_RETRY_FREQ (spec §4.6, testable property 11).
	LastAttempt time.Time

	// NumSymbols is set for SymbComplete: the symbol store must then
	// contain exactly one file for this FileId whose tree has this
	// many ranges (spec §3 invariants).
	NumSymbols uint32
}

func NotAttempted() SymbStatus { return SymbStatus{Tag: SymbNotAttempted} }

func TempError(at time.Time) SymbStatus {
	return SymbStatus{Tag: SymbTempError, LastAttempt: at}
}

func NotPresentGlobally() SymbStatus { return SymbStatus{Tag: SymbNotPresentGlobally} }

func Complete(numSymbols uint32) SymbStatus {
	return SymbStatus{Tag: SymbComplete, NumSymbols: numSymbols}
}

// ExecutableMeta is the value stored in the executables table.
type ExecutableMeta struct {
	BuildId    *string
	FileName   *string
	SymbStatus SymbStatus
}
