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

package dbstore

import (
	"fmt"

	"github.com/go-stack/stack"
)

// StorageFailure wraps an underlying mdbx transaction error (spec.md
// §7: "underlying KV IO error. Treated as fatal by convention; the
// process exits or aborts the handler."). The caller stack is
// captured at wrap time so a crash report shows where the failing
// transaction was opened, not just mdbx's own error string.
type StorageFailure struct {
	Op    string
	Err   error
	stack stack.CallStack
}

func newStorageFailure(op string, err error) *StorageFailure {
	return &StorageFailure{Op: op, Err: err, stack: stack.Trace().TrimRuntime()}
}

func (f *StorageFailure) Error() string {
	return fmt.Sprintf("dbstore: storage failure during %s: %v\n%v", f.Op, f.Err, f.stack)
}

func (f *StorageFailure) Unwrap() error { return f.Err }

// Stack returns the captured call stack as a multi-line string,
// suitable for inclusion in a crash report.
func (f *StorageFailure) Stack() string { return fmt.Sprintf("%+v", f.stack) }
