package ingest

import (
	"testing"

	"github.com/flamehost/profsink/internal/model"
)

func TestNormalizeTimestampBoundary(t *testing.T) {
	const boundary = nsBoundary * 1_000_000_000

	cases := []struct {
		name string
		in   uint64
		want uint64
	}{
		{"at boundary treated as milliseconds", boundary, boundary / 1_000},
		{"just above boundary treated as nanoseconds", boundary + 1, (boundary + 1) / 1_000_000_000},
		{"typical nanosecond timestamp", 1_720_000_000_000_000_000, 1_720_000_000},
		{"typical millisecond timestamp", 1_720_000_000_000, 1_720_000_000},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := normalizeTimestamp(tc.in); got != tc.want {
				t.Fatalf("normalizeTimestamp(%d) = %d, want %d", tc.in, got, tc.want)
			}
		})
	}
}

func TestClockFallbackUsedWhenTimestampsEmpty(t *testing.T) {
	orig := Clock
	defer func() { Clock = orig }()
	Clock = func() uint64 { return 1_700_000_000 }

	store := openTestStore(t)
	req := &ExportRequest{
		Dictionary: &Dictionary{StringTable: []string{""}},
		ResourceProfiles: []ResourceProfiles{
			{ScopeProfiles: []ScopeProfiles{
				{Profiles: []Profile{
					{
						SampleType:      []ValueType{{Type: "samples", Unit: "count"}},
						LocationIndices: nil,
						Samples: []Sample{
							{LocationsStartIndex: 0, LocationsLength: 0},
						},
					},
				}},
			}},
		},
	}

	if err := ExportProfiles(store, req); err != nil {
		t.Fatalf("ExportProfiles: %v", err)
	}

	var seen uint64
	err := store.TraceEvents.Range(nil, func(k, _ []byte) (bool, error) {
		id, ok := model.DecodeTraceCountId(k)
		if !ok {
			t.Fatal("bad key")
		}
		seen = id.Timestamp
		return true, nil
	})
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if seen != 1_700_000_000 {
		t.Fatalf("expected fallback timestamp 1_700_000_000, got %d", seen)
	}
}
