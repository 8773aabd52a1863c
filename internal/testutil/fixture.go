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

// Package testutil loads JSON-encoded ingestion fixtures for
// end-to-end tests of internal/ingest, the way the Erigon state tests
// load their post-state JSON fixtures: a thin json struct, an
// UnmarshalJSON that decodes straight into it, and hex-prefixed byte
// fields decoded on demand rather than eagerly.
package testutil

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/flamehost/profsink/internal/ingest"
)

// HexBytes decodes a "0x"-prefixed hex string into raw bytes, matching
// the wire encoding used by the fixture JSON's build-id and mapping
// fields.
type HexBytes []byte

func (h *HexBytes) UnmarshalJSON(in []byte) error {
	var s string
	if err := json.Unmarshal(in, &s); err != nil {
		return err
	}
	if s == "" {
		*h = nil
		return nil
	}
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return fmt.Errorf("invalid hex string %q: %w", s, err)
	}
	*h = b
	return nil
}

// IngestFixture is one named ingestion test case: a dictionary plus a
// flat list of samples, shaped closely enough to internal/ingest's own
// types that a test can build an ingest.ExportRequest from it directly
// without going through internal/rpcserver's wire translation.
type IngestFixture struct {
	json ingestFixtureJSON
}

func (f *IngestFixture) UnmarshalJSON(in []byte) error {
	return json.Unmarshal(in, &f.json)
}

type ingestFixtureJSON struct {
	Name       string                `json:"name"`
	StringTbl  []string              `json:"stringTable"`
	Mappings   []fixtureMapping      `json:"mappings"`
	Locations  []fixtureLocation     `json:"locations"`
	Profiles   []fixtureProfile      `json:"profiles"`
}

type fixtureMapping struct {
	FilenameIndex int32    `json:"filenameIndex"`
	BuildId       HexBytes `json:"buildId"`
}

type fixtureLocation struct {
	MappingIndex int32             `json:"mappingIndex"`
	Address      uint64            `json:"address"`
	Lines        []fixtureLine     `json:"lines"`
}

type fixtureLine struct {
	FunctionName string `json:"functionName"`
	FunctionFile string `json:"functionFile"`
	LineNumber   int64  `json:"lineNumber"`
}

type fixtureProfile struct {
	Type            string    `json:"type"`
	Unit            string    `json:"unit"`
	LocationIndices []int32   `json:"locationIndices"`
	Samples         []fixtureSample `json:"samples"`
}

type fixtureSample struct {
	LocationsStartIndex int32    `json:"locationsStartIndex"`
	LocationsLength     int32    `json:"locationsLength"`
	TimestampsUnixNano  []uint64 `json:"timestampsUnixNano"`
}

// Name returns the fixture's case name, used to label subtests.
func (f *IngestFixture) Name() string { return f.json.Name }

// StringTable returns the fixture's interned string table.
func (f *IngestFixture) StringTable() []string { return f.json.StringTbl }

// Mappings returns the fixture's decoded mapping table.
func (f *IngestFixture) Mappings() []fixtureMapping { return f.json.Mappings }

// Locations returns the fixture's decoded location table.
func (f *IngestFixture) Locations() []fixtureLocation { return f.json.Locations }

// Profiles returns the fixture's decoded profile list.
func (f *IngestFixture) Profiles() []fixtureProfile { return f.json.Profiles }

// ToExportRequest builds an ingest.ExportRequest from the fixture,
// letting a single checked-in JSON file drive an end-to-end ingest
// test without hand-writing the struct literal in Go.
func (f *IngestFixture) ToExportRequest() *ingest.ExportRequest {
	dict := &ingest.Dictionary{StringTable: f.json.StringTbl}
	for _, m := range f.json.Mappings {
		dict.MappingTable = append(dict.MappingTable, ingest.Mapping{FilenameIndex: m.FilenameIndex})
	}
	for _, l := range f.json.Locations {
		loc := ingest.Location{MappingIndex: l.MappingIndex, Address: l.Address}
		for _, ln := range l.Lines {
			loc.Lines = append(loc.Lines, ingest.Line{
				FunctionName: ln.FunctionName,
				FunctionFile: ln.FunctionFile,
				LineNumber:   ln.LineNumber,
			})
		}
		dict.LocationTable = append(dict.LocationTable, loc)
	}

	req := &ingest.ExportRequest{Dictionary: dict}
	var profiles []ingest.Profile
	for _, p := range f.json.Profiles {
		prof := ingest.Profile{
			SampleType:      []ingest.ValueType{{Type: p.Type, Unit: p.Unit}},
			LocationIndices: p.LocationIndices,
		}
		for _, s := range p.Samples {
			prof.Samples = append(prof.Samples, ingest.Sample{
				LocationsStartIndex: s.LocationsStartIndex,
				LocationsLength:     s.LocationsLength,
				TimestampsUnixNano:  s.TimestampsUnixNano,
			})
		}
		profiles = append(profiles, prof)
	}
	req.ResourceProfiles = []ingest.ResourceProfiles{
		{ScopeProfiles: []ingest.ScopeProfiles{{Profiles: profiles}}},
	}
	return req
}

// LoadFixtureDir reads every *.json file in dir and decodes each into
// an IngestFixture, skipping nothing and failing loudly on the first
// malformed file: fixtures are checked-in test data, not user input.
func LoadFixtureDir(dir string) ([]*IngestFixture, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []*IngestFixture
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		var f IngestFixture
		if err := json.Unmarshal(raw, &f); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}
		out = append(out, &f)
	}
	return out, nil
}
