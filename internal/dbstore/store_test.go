package dbstore

import (
	"testing"

	"github.com/flamehost/profsink/internal/model"
	"github.com/stretchr/testify/require"
)

func TestStoreRoundTripAcrossTables(t *testing.T) {
	store, err := OpenMem(model.MetricRegistry{1: {Name: "requests", Kind: model.MetricCounter}})
	require.NoError(t, err)
	defer store.Close()

	fileID := model.FileId{0xAB}
	exec := model.ExecutableMeta{FileName: strp("/bin/app"), SymbStatus: model.NotAttempted()}
	require.NoError(t, store.Executables.Insert(fileID[:], EncodeExecutableMeta(exec)))

	reader := NewStoreReader(store, nil)
	got, ok, err := reader.GetExecutableMeta(fileID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, exec.FileName, got.FileName)

	mk := model.MetricKey{Timestamp: 10, MetricId: 1}
	key := mk.Encode()
	require.NoError(t, store.Metrics.Insert(key[:], EncodeMetricValue(5)))
	require.NoError(t, store.Metrics.Insert(key[:], EncodeMetricValue(7)))

	v, ok, err := reader.GetMetricValue(mk)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(12), v)
}

func TestStoreTraceEventsKeyOrderMatchesByteOrder(t *testing.T) {
	store, err := OpenMem(nil)
	require.NoError(t, err)
	defer store.Close()

	ids := []model.TraceCountId{
		{Timestamp: 5, Id: 1, Kind: model.SampleOnCPU},
		{Timestamp: 1, Id: 9, Kind: model.SampleOnCPU},
		{Timestamp: 5, Id: 0, Kind: model.SampleOnCPU},
	}
	for _, id := range ids {
		k := id.Encode()
		tc := model.TraceCount{Timestamp: id.Timestamp, Comm: "x"}
		require.NoError(t, store.TraceEvents.Insert(k[:], EncodeTraceCount(tc)))
	}

	var seenTimestamps []uint64
	require.NoError(t, store.TraceEvents.Range(nil, func(k, v []byte) (bool, error) {
		id, ok := model.DecodeTraceCountId(k)
		require.True(t, ok)
		seenTimestamps = append(seenTimestamps, id.Timestamp)
		return true, nil
	}))
	require.Equal(t, []uint64{1, 5, 5}, seenTimestamps)
}
