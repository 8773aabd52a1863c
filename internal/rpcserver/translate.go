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

package rpcserver

import (
	profilespb "go.opentelemetry.io/proto/otlp/profiles/v1development"

	"github.com/flamehost/profsink/internal/ingest"
)

// translateDictionary copies the wire-level shared dictionary into
// ingest's own shape. The wire dictionary's stack_table (each stack a
// list of location indices) has no equivalent in ingest.Dictionary;
// translateProfile flattens each sample's referenced stack into a
// per-profile LocationIndices run instead, matching the
// start-index/length convention ingest.Sample already expects.
func translateDictionary(d *profilespb.ProfilesDictionary) *ingest.Dictionary {
	out := &ingest.Dictionary{
		StringTable: d.GetStringTable(),
	}

	for _, a := range d.GetAttributeTable() {
		out.AttributeTable = append(out.AttributeTable, ingest.Attribute{
			Key:   a.GetKey(),
			Value: a.GetValue().GetStringValue(),
		})
	}

	for _, m := range d.GetMappingTable() {
		out.MappingTable = append(out.MappingTable, ingest.Mapping{
			FilenameIndex:    m.GetFilenameStrindex(),
			AttributeIndices: m.GetAttributeIndices(),
		})
	}

	functions := d.GetFunctionTable()
	for _, loc := range d.GetLocationTable() {
		var lines []ingest.Line
		for _, ln := range loc.GetLine() {
			fn := functionAt(functions, ln.GetFunctionIndex())
			lines = append(lines, ingest.Line{
				FunctionIndex: ln.GetFunctionIndex(),
				FunctionName:  stringAt(out.StringTable, fn.GetNameStrindex()),
				FunctionFile:  stringAt(out.StringTable, fn.GetFilenameStrindex()),
				LineNumber:    ln.GetLine(),
				Column:        ln.GetColumn(),
			})
		}
		out.LocationTable = append(out.LocationTable, ingest.Location{
			MappingIndex:     loc.GetMappingIndex(),
			Address:          loc.GetAddress(),
			Lines:            lines,
			AttributeIndices: loc.GetAttributeIndices(),
		})
	}

	return out
}

func functionAt(table []*profilespb.Function, idx int32) *profilespb.Function {
	if idx < 0 || int(idx) >= len(table) {
		return (*profilespb.Function)(nil)
	}
	return table[idx]
}

func stringAt(table []string, idx int32) string {
	if idx < 0 || int(idx) >= len(table) {
		return ""
	}
	return table[idx]
}

// translateProfile converts one wire Profile into ingest's Profile,
// flattening the dictionary's stack_table references each sample
// makes into one contiguous LocationIndices slice for the whole
// profile -- ingest.Sample.LocationsStartIndex/LocationsLength then
// index into it exactly like the original flat-location encoding did.
// dict is the already-translated dictionary, used only to resolve
// sample_type's string indices.
func translateProfile(p *profilespb.Profile, stacks []*profilespb.Stack, dict *ingest.Dictionary) ingest.Profile {
	out := ingest.Profile{}
	for _, st := range p.GetSampleType() {
		out.SampleType = append(out.SampleType, ingest.ValueType{
			Type: stringAt(dict.StringTable, st.GetTypeStrindex()),
			Unit: stringAt(dict.StringTable, st.GetUnitStrindex()),
		})
	}

	for _, s := range p.GetSample() {
		start := int32(len(out.LocationIndices))
		locIdx := stackLocationIndices(stacks, s.GetStackIndex())
		out.LocationIndices = append(out.LocationIndices, locIdx...)

		out.Samples = append(out.Samples, ingest.Sample{
			LocationsStartIndex: start,
			LocationsLength:     int32(len(locIdx)),
			TimestampsUnixNano:  s.GetTimestampsUnixNano(),
			AttributeIndices:    s.GetAttributeIndices(),
		})
	}

	return out
}

func stackLocationIndices(stacks []*profilespb.Stack, idx int32) []int32 {
	if idx < 0 || int(idx) >= len(stacks) {
		return nil
	}
	return stacks[idx].GetLocationIndices()
}
