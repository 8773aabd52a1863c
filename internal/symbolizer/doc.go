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

// Package symbolizer implements spec.md §4.6: a discovery scan over
// the executables table, a bounded-parallelism controller that fetches
// symbol ranges for whatever the scan turns up, and a local-ingest
// path for a user-dropped executable. None of the HTTP/zstd/DWARF
// plumbing is exercised directly by the controller's own tests --
// those run against the Fetcher interface with a hand-written double,
// matching SPEC_FULL.md's ambient-stack note that concurrency-boundary
// interfaces get test doubles, not a live network.
package symbolizer
