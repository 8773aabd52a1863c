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

package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadFixtureDirDecodesHexBuildId(t *testing.T) {
	fixtures, err := LoadFixtureDir("testdata")
	require.NoError(t, err)
	require.Len(t, fixtures, 1)

	f := fixtures[0]
	require.Equal(t, "single_sample", f.Name())
	require.Len(t, f.Mappings(), 1)
	require.Equal(t, HexBytes{0xde, 0xad, 0xbe, 0xef}, f.Mappings()[0].BuildId)
}

func TestIngestFixtureToExportRequest(t *testing.T) {
	fixtures, err := LoadFixtureDir("testdata")
	require.NoError(t, err)

	req := fixtures[0].ToExportRequest()
	require.Equal(t, []string{"", "native", "/lib/foo.so"}, req.Dictionary.StringTable)
	require.Len(t, req.ResourceProfiles, 1)
	profiles := req.ResourceProfiles[0].ScopeProfiles[0].Profiles
	require.Len(t, profiles, 1)
	require.Equal(t, "samples", profiles[0].SampleType[0].Type)
	require.Len(t, profiles[0].Samples, 1)
	require.Equal(t, int32(1), profiles[0].Samples[0].LocationsLength)
}
