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

// Package intervaltree is a static, max-end-augmented interval tree:
// built once from a batch of (range, value) elements, never mutated
// afterward, queryable by point or by range overlap in O(log n + m).
//
// Neither google/btree nor tidwall/btree fit here: both are mutable,
// unaugmented ordered maps, and this tree's whole value (an on-disk,
// mmap-queryable symbol index) comes from the max-end augmentation
// and the flat archived encoding in archive.go, which a generic BST
// package has no way to express. Built by hand over sort.Slice, which
// is the correct scope for domain-specific code like this.
package intervaltree
