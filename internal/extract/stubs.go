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

package extract

import "debug/elf"

// goSymtabExtractor would read a Go binary's embedded pclntab
// (runtime.moduledata) to recover function ranges without DWARF, for
// binaries built with -w. Not implemented: profsink only needs to
// handle DWARF-carrying binaries for local ingest today, so this
// backend documents the gap rather than silently degrading.
type goSymtabExtractor struct{}

func (goSymtabExtractor) Name() string { return "go-symtab" }

func (goSymtabExtractor) Extract(*elf.File) ([]Range, error) { return nil, ErrUnsupported }

// debugSymtabExtractor would fall back to ELF .symtab entries (st_value
// / st_size), giving function boundaries with no file/line information
// at all. Not implemented for the same reason as goSymtabExtractor.
type debugSymtabExtractor struct{}

func (debugSymtabExtractor) Name() string { return "debug-symtab" }

func (debugSymtabExtractor) Extract(*elf.File) ([]Range, error) { return nil, ErrUnsupported }

// dynSymtabExtractor would fall back further still, to .dynsym -- the
// last resort for a stripped shared library that exports only its
// public symbols. Not implemented for the same reason.
type dynSymtabExtractor struct{}

func (dynSymtabExtractor) Name() string { return "dyn-symtab" }

func (dynSymtabExtractor) Extract(*elf.File) ([]Range, error) { return nil, ErrUnsupported }
