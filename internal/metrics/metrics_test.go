package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/flamehost/profsink/internal/dbstore"
	"github.com/flamehost/profsink/internal/model"
	"github.com/stretchr/testify/require"
)

func TestObserveCacheAccumulatesAcrossCalls(t *testing.T) {
	store, err := dbstore.OpenMem(model.MetricRegistry{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	m := New()
	m.ObserveCache(store)

	_, _, err = store.Executables.Get([]byte("missing"))
	require.NoError(t, err)
	m.ObserveCache(store)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	require.Contains(t, rec.Body.String(), "profsink_kv_cache_misses_total")
}
