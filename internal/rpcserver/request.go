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
	collectorpb "go.opentelemetry.io/proto/otlp/collector/profiles/v1development"

	"github.com/flamehost/profsink/internal/ingest"
)

// requestSizes is the decoded-dictionary shape pushed to the
// observation ring per ExportProfiles call (SPEC_FULL.md's "gRPC
// structured request log" supplement) -- sizes only, never the
// payload itself, to bound the ring's memory.
type requestSizes struct {
	ResourceSpans  int
	StringTable    int
	AttributeTable int
	MappingTable   int
	LocationTable  int
	Samples        int
}

// translateRequest converts one ExportProfilesServiceRequest into
// ingest's ExportRequest, and separately reports the sizes worth
// logging to the observation ring.
func translateRequest(req *collectorpb.ExportProfilesServiceRequest) (*ingest.ExportRequest, requestSizes) {
	dict := translateDictionary(req.GetDictionary())
	stacks := req.GetDictionary().GetStackTable()

	out := &ingest.ExportRequest{Dictionary: dict}
	sizes := requestSizes{
		ResourceSpans:  len(req.GetResourceProfiles()),
		StringTable:    len(dict.StringTable),
		AttributeTable: len(dict.AttributeTable),
		MappingTable:   len(dict.MappingTable),
		LocationTable:  len(dict.LocationTable),
	}

	for _, rp := range req.GetResourceProfiles() {
		var outRP ingest.ResourceProfiles
		for _, sp := range rp.GetScopeProfiles() {
			var outSP ingest.ScopeProfiles
			for _, p := range sp.GetProfiles() {
				prof := translateProfile(p, stacks, dict)
				sizes.Samples += len(prof.Samples)
				outSP.Profiles = append(outSP.Profiles, prof)
			}
			outRP.ScopeProfiles = append(outRP.ScopeProfiles, outSP)
		}
		out.ResourceProfiles = append(out.ResourceProfiles, outRP)
	}

	return out, sizes
}
