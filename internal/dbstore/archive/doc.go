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

// Package archive implements the stable byte layout required by
// spec.md §4.2: each stored type gets a fixed-offset header of scalar
// fields plus a forward "tail" region holding variable-length data
// (strings, frame lists), and a borrowed "view" type that reads fields
// directly out of the backing []byte on each access.
//
// There is no pack or ecosystem analog for Rust's rkyv (the library
// original_source actually uses): flatbuffers/cap'n'proto require an
// IDL/codegen step that changes the contract's character (a generated
// accessor type per schema, not "one encoding read two ways"), so this
// package is hand-written, grounded only in spec.md §4.2 itself (see
// DESIGN.md's standard-library justification for this package).
//
// Views deliberately do not use unsafe.Pointer reinterpretation. Field
// access instead goes straight through encoding/binary against the
// backing slice (which may be a cache entry, an mmap'd region, or a
// plain read buffer) without first decoding into an intermediate
// struct graph -- the same "read directly from the bytes you already
// have" cost profile spec.md asks for, achieved without the alignment
// and lifetime hazards unsafe casts would add on top of an mmap'd
// file.
package archive
