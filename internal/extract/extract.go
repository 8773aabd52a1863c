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

// Package extract is SPEC_FULL.md's "multi-source symbol extraction"
// supplement to spec.md §4.6's local-ingest task: a small Extractor
// interface, a DWARF-backed implementation (the only one actually
// built), and a priority-ordered composite that also names the three
// backends the original combines but that profsink does not implement
// (Go symtab, ELF/Mach-O symbol table, dynamic symbol table), each a
// documented stub returning ErrUnsupported.
package extract

import (
	"debug/elf"
	"errors"

	"github.com/flamehost/profsink/internal/symstore"
)

// ErrUnsupported is returned by a backend that cannot extract ranges
// from the given file at all (wrong format, missing section), as
// opposed to a transient or corruption error.
var ErrUnsupported = errors.New("extract: backend cannot handle this executable")

// Range is one extracted symbol range, in the exact shape
// symstore.TreeBuilder.AddRange wants.
type Range struct {
	AddrStart, AddrEnd uint64
	Func, File         string
	CallFile           string
	CallLine           *uint32
	Depth              uint16
	LineTable          []symstore.LineEntry
}

// Extractor pulls symbol ranges out of an already-opened ELF file.
type Extractor interface {
	Name() string
	Extract(f *elf.File) ([]Range, error)
}

// Composite tries each Extractor in order and returns the first one
// that doesn't report ErrUnsupported (spec.md §4.6 supplement:
// "priority-ordered composite extractor").
type Composite struct {
	backends []Extractor
}

func NewComposite(backends ...Extractor) *Composite {
	return &Composite{backends: backends}
}

func (c *Composite) Name() string { return "composite" }

func (c *Composite) Extract(f *elf.File) ([]Range, error) {
	var lastErr error = ErrUnsupported
	for _, b := range c.backends {
		ranges, err := b.Extract(f)
		if err == nil {
			return ranges, nil
		}
		if !errors.Is(err, ErrUnsupported) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// Default is the priority order spec.md §4.6's original combines:
// DWARF first (richest: inlining, line tables), falling back to the
// symbol-table-only backends that can at least name a function.
var Default Extractor = NewComposite(
	DWARFExtractor{},
	goSymtabExtractor{},
	debugSymtabExtractor{},
	dynSymtabExtractor{},
)
