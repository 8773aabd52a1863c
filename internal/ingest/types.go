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

// Package ingest implements the two-pass OTLP-profiles decode of
// spec.md §4.5. It works over a small domain-shaped ExportRequest
// rather than the generated profiles v1development protobuf types
// directly: internal/rpcserver is the only place that touches the
// wire message, translating it into the types below so this package
// stays testable with plain Go literals and has one seam instead of
// scattering proto field access through the pipeline.
package ingest

// Attribute is a decoded (key, string-value) pair. The wire format
// allows other value kinds; internal/rpcserver turns any non-string
// value into an empty string, and nothing rejects such a request.
type Attribute struct {
	Key   string
	Value string
}

// Line is one entry of a location's inlined line table.
type Line struct {
	FunctionIndex int32
	FunctionName  string
	FunctionFile  string
	LineNumber    int64
	Column        int64
}

// Mapping describes one loaded object (executable or shared library).
type Mapping struct {
	FilenameIndex   int32
	AttributeIndices []int32
}

// Location is one entry of dic.location_table.
type Location struct {
	MappingIndex     int32
	Address          uint64
	Lines            []Line
	AttributeIndices []int32
}

// Dictionary is the request-wide interning table referenced by index
// from every profile.
type Dictionary struct {
	StringTable    []string
	AttributeTable []Attribute
	MappingTable   []Mapping
	LocationTable  []Location
}

func (d *Dictionary) attr(idx int32) (Attribute, bool) {
	if idx < 0 || int(idx) >= len(d.AttributeTable) {
		return Attribute{}, false
	}
	return d.AttributeTable[idx], true
}

// attrByKey scans attrIdx (a location's or mapping's AttributeIndices)
// for the given key and returns its string value.
func (d *Dictionary) attrByKey(attrIdx []int32, key string) (string, bool) {
	for _, idx := range attrIdx {
		a, ok := d.attr(idx)
		if !ok {
			continue
		}
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// ValueType is a profile's sample_type entry.
type ValueType struct {
	Type string
	Unit string
}

// Sample is one profile.sample entry.
type Sample struct {
	LocationsStartIndex int32
	LocationsLength     int32
	TimestampsUnixNano  []uint64
	AttributeIndices    []int32
}

// Profile is one profile entry in a scope's profile list.
type Profile struct {
	SampleType      []ValueType
	LocationIndices []int32
	Samples         []Sample
}

// ScopeProfiles groups Profile entries under one instrumentation
// scope; ExportRequest.Dictionary is shared across every scope and
// resource.
type ScopeProfiles struct {
	Profiles []Profile
}

// ResourceProfiles groups ScopeProfiles under one resource.
type ResourceProfiles struct {
	ScopeProfiles []ScopeProfiles
}

// ExportRequest is the decoded shape of one ExportProfiles RPC call.
type ExportRequest struct {
	Dictionary       *Dictionary
	ResourceProfiles []ResourceProfiles
}
