package dbstore

import (
	"testing"

	"github.com/flamehost/profsink/internal/model"
	"github.com/stretchr/testify/require"
)

func mkKey(id uint32) []byte {
	k := model.MetricKey{Timestamp: 1, MetricId: id}.Encode()
	return k[:]
}

func TestMetricsMergeCounterAssociativity(t *testing.T) {
	registry := model.MetricRegistry{1: {Name: "requests", Kind: model.MetricCounter}}
	merge := MetricsMerge(registry)
	key := mkKey(1)

	a, b, c := EncodeMetricValue(1), EncodeMetricValue(2), EncodeMetricValue(3)

	allAtOnce, err := merge(key, nil, [][]byte{a, b, c})
	require.NoError(t, err)

	step1, err := merge(key, nil, [][]byte{a})
	require.NoError(t, err)
	stepwise, err := merge(key, step1, [][]byte{b, c})
	require.NoError(t, err)

	v1, _ := DecodeMetricValue(allAtOnce)
	v2, _ := DecodeMetricValue(stepwise)
	require.Equal(t, int64(6), v1)
	require.Equal(t, v1, v2)
}

func TestMetricsMergeGaugeIsMax(t *testing.T) {
	registry := model.MetricRegistry{2: {Name: "inflight", Kind: model.MetricGauge}}
	merge := MetricsMerge(registry)
	key := mkKey(2)

	got, err := merge(key, EncodeMetricValue(5), [][]byte{EncodeMetricValue(2), EncodeMetricValue(9), EncodeMetricValue(3)})
	require.NoError(t, err)
	v, _ := DecodeMetricValue(got)
	require.Equal(t, int64(9), v)
}

func TestMetricsMergeUnknownIdLastWriteWins(t *testing.T) {
	registry := model.MetricRegistry{}
	merge := MetricsMerge(registry)
	key := mkKey(99)

	got, err := merge(key, EncodeMetricValue(1), [][]byte{EncodeMetricValue(2), EncodeMetricValue(3)})
	require.NoError(t, err)
	v, _ := DecodeMetricValue(got)
	require.Equal(t, int64(3), v)
}

func TestMetricsMergeCounterSaturates(t *testing.T) {
	registry := model.MetricRegistry{3: {Name: "huge", Kind: model.MetricCounter}}
	merge := MetricsMerge(registry)
	key := mkKey(3)

	max := EncodeMetricValue(int64(1<<63 - 1)) // math.MaxInt64
	got, err := merge(key, max, [][]byte{EncodeMetricValue(5)})
	require.NoError(t, err)
	v, _ := DecodeMetricValue(got)
	require.Equal(t, int64(1<<63-1), v)
}
