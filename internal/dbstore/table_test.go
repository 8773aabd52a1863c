package dbstore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestTable(t *testing.T, cfg TableCfgItem, merge MergeFunc) (*Table, Engine) {
	t.Helper()
	eng := NewMemEngine()
	require.NoError(t, eng.CreateTable("t"))
	tbl, err := OpenTable(eng, "t", cfg, merge)
	require.NoError(t, err)
	return tbl, eng
}

func TestTableInsertGetRoundTrip(t *testing.T) {
	tbl, _ := newTestTable(t, TableCfgItem{Access: RandomAccess, CacheEntries: 16}, nil)
	require.NoError(t, tbl.Insert([]byte("k1"), []byte("v1")))

	v, ok, err := tbl.Get([]byte("k1"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("v1"), v)

	_, ok, err = tbl.Get([]byte("missing"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestTableRemoveInvalidatesCache(t *testing.T) {
	tbl, _ := newTestTable(t, TableCfgItem{Access: RandomAccess, CacheEntries: 16}, nil)
	require.NoError(t, tbl.Insert([]byte("k1"), []byte("v1")))
	_, ok, _ := tbl.Get([]byte("k1"))
	require.True(t, ok)

	require.NoError(t, tbl.Remove([]byte("k1")))
	_, ok, err := tbl.Get([]byte("k1"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestTableRangeOrder(t *testing.T) {
	tbl, _ := newTestTable(t, TableCfgItem{Access: SequentialRead}, nil)
	require.NoError(t, tbl.Insert([]byte("b"), []byte("2")))
	require.NoError(t, tbl.Insert([]byte("a"), []byte("1")))
	require.NoError(t, tbl.Insert([]byte("c"), []byte("3")))

	var keys []string
	require.NoError(t, tbl.Range(nil, func(k, v []byte) (bool, error) {
		keys = append(keys, string(k))
		return true, nil
	}))
	require.Equal(t, []string{"a", "b", "c"}, keys)
}

func TestTableMergeOnInsert(t *testing.T) {
	sumMerge := func(_ []byte, prev []byte, newValues [][]byte) ([]byte, error) {
		acc := int64(0)
		if prev != nil {
			v, err := DecodeMetricValue(prev)
			if err != nil {
				return nil, err
			}
			acc = v
		}
		for _, raw := range newValues {
			v, err := DecodeMetricValue(raw)
			if err != nil {
				return nil, err
			}
			acc += v
		}
		return EncodeMetricValue(acc), nil
	}
	tbl, _ := newTestTable(t, TableCfgItem{Access: SequentialRead, HasMerge: true}, sumMerge)

	require.NoError(t, tbl.Insert([]byte("k"), EncodeMetricValue(1)))
	require.NoError(t, tbl.Insert([]byte("k"), EncodeMetricValue(2)))
	require.NoError(t, tbl.Insert([]byte("k"), EncodeMetricValue(3)))

	v, ok, err := tbl.Get([]byte("k"))
	require.NoError(t, err)
	require.True(t, ok)
	got, err := DecodeMetricValue(v)
	require.NoError(t, err)
	require.Equal(t, int64(6), got)
}

func TestWriteBatchAtomicCommit(t *testing.T) {
	tbl, _ := newTestTable(t, TableCfgItem{Access: RandomAccess, CacheEntries: 16}, nil)
	b := NewWriteBatch(tbl.engine)
	b.Insert(tbl, []byte("k1"), []byte("v1"))
	b.Insert(tbl, []byte("k2"), []byte("v2"))
	require.NoError(t, b.Commit())

	for _, k := range []string{"k1", "k2"} {
		_, ok, err := tbl.Get([]byte(k))
		require.NoError(t, err)
		require.True(t, ok, k)
	}
}

func TestTableLastSeqAdvancesOnWrite(t *testing.T) {
	tbl, _ := newTestTable(t, TableCfgItem{Access: RandomAccess}, nil)
	seq0, err := tbl.LastSeq()
	require.NoError(t, err)
	require.NoError(t, tbl.Insert([]byte("k"), []byte("v")))
	seq1, err := tbl.LastSeq()
	require.NoError(t, err)
	require.Greater(t, seq1, seq0)
}
