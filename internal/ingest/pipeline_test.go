package ingest

import (
	"testing"

	"github.com/flamehost/profsink/internal/dbstore"
	"github.com/flamehost/profsink/internal/model"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *dbstore.Store {
	t.Helper()
	store, err := dbstore.OpenMem(model.MetricRegistry{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// TestExportProfilesEndToEnd reproduces the single-frame, single-sample
// scenario: a single native mapping with no build-id
// attribute, one location at address 0x1234, one profile with sample
// type "samples"/"count" and one sample referencing that location.
func TestExportProfilesEndToEnd(t *testing.T) {
	store := openTestStore(t)

	req := &ExportRequest{
		Dictionary: &Dictionary{
			StringTable: []string{"", "native", "/lib/foo.so"},
			AttributeTable: []Attribute{
				{Key: "profile.frame.type", Value: "native"},
			},
			MappingTable: []Mapping{
				{FilenameIndex: 2},
			},
			LocationTable: []Location{
				{MappingIndex: 0, Address: 0x1234, AttributeIndices: []int32{0}},
			},
		},
		ResourceProfiles: []ResourceProfiles{
			{ScopeProfiles: []ScopeProfiles{
				{Profiles: []Profile{
					{
						SampleType:      []ValueType{{Type: "samples", Unit: "count"}},
						LocationIndices: []int32{0},
						Samples: []Sample{
							{
								LocationsStartIndex: 0,
								LocationsLength:     1,
								TimestampsUnixNano:  []uint64{1_720_000_000_000_000_000},
							},
						},
					},
				}},
			}},
		},
	}

	require.NoError(t, ExportProfiles(store, req))

	var execCount int
	require.NoError(t, store.Executables.Range(nil, func(_, _ []byte) (bool, error) {
		execCount++
		return true, nil
	}))
	require.Equal(t, 1, execCount, "executables should contain one synthesized entry")

	var traceVal []byte
	require.NoError(t, store.StackTraces.Range(nil, func(_, v []byte) (bool, error) {
		traceVal = v
		return true, nil
	}))
	require.NotNil(t, traceVal)
	frames, err := dbstore.DecodeFrameList(traceVal)
	require.NoError(t, err)
	require.Len(t, frames, 1)

	var (
		eventCount int
		gotId      model.TraceCountId
		gotVal     model.TraceCount
	)
	require.NoError(t, store.TraceEvents.Range(nil, func(k, v []byte) (bool, error) {
		eventCount++
		id, ok := model.DecodeTraceCountId(k)
		require.True(t, ok)
		gotId = id
		val, err := dbstore.DecodeTraceCount(v)
		if err != nil {
			return false, err
		}
		gotVal = val
		return true, nil
	}))
	require.Equal(t, 1, eventCount, "trace_events should contain exactly one entry")
	require.Equal(t, uint64(1_720_000_000), gotId.Timestamp)
	require.Equal(t, model.SampleOnCPU, gotId.Kind)
	require.Equal(t, uint64(1_720_000_000), gotVal.Timestamp)
}

func TestExportProfilesMissingDictionaryRejected(t *testing.T) {
	store := openTestStore(t)
	err := ExportProfiles(store, &ExportRequest{})
	require.ErrorIs(t, err, ErrMissingDictionary)
	require.True(t, IsRequestRejection(err))
}

func TestExportProfilesSkipsMultiSampleTypeProfile(t *testing.T) {
	store := openTestStore(t)

	req := &ExportRequest{
		Dictionary: &Dictionary{
			StringTable: []string{""},
		},
		ResourceProfiles: []ResourceProfiles{
			{ScopeProfiles: []ScopeProfiles{
				{Profiles: []Profile{
					{
						SampleType: []ValueType{
							{Type: "samples", Unit: "count"},
							{Type: "events", Unit: "nanoseconds"},
						},
					},
				}},
			}},
		},
	}

	require.NoError(t, ExportProfiles(store, req))

	var count int
	require.NoError(t, store.TraceEvents.Range(nil, func(_, _ []byte) (bool, error) {
		count++
		return true, nil
	}))
	require.Zero(t, count)
}
