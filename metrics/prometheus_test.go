package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestPrometheusExporter(t *testing.T) {
	reg := prometheus.NewRegistry()
	e, err := NewPrometheus("users", reg)
	require.NoError(t, err)

	e.RecordHit()
	e.RecordHit()
	e.RecordMiss()
	e.RecordSet()
	e.RecordEviction()
	e.RecordExpiration()
	e.RecordError()
	e.UpdateSize(3)
	e.UpdateMemory(512)

	labels := prometheus.Labels{"namespace": "users"}
	require.Equal(t, 2.0, testutil.ToFloat64(e.hits.With(labels)))
	require.Equal(t, 1.0, testutil.ToFloat64(e.misses.With(labels)))
	require.Equal(t, 1.0, testutil.ToFloat64(e.sets.With(labels)))
	require.Equal(t, 1.0, testutil.ToFloat64(e.evictions.With(labels)))
	require.Equal(t, 1.0, testutil.ToFloat64(e.expirations.With(labels)))
	require.Equal(t, 1.0, testutil.ToFloat64(e.errors.With(labels)))
	require.Equal(t, 3.0, testutil.ToFloat64(e.size.With(labels)))
	require.Equal(t, 512.0, testutil.ToFloat64(e.memory.With(labels)))

	// Snapshot is served from the internal counters.
	snap := e.Snapshot()
	require.Equal(t, int64(2), snap.Hits)
	require.Equal(t, int64(1), snap.Misses)
	require.Equal(t, 66.67, snap.HitRate)
}

func TestPrometheusExporterSharedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()

	users, err := NewPrometheus("users", reg)
	require.NoError(t, err)
	orders, err := NewPrometheus("orders", reg)
	require.NoError(t, err)

	users.RecordHit()
	orders.RecordHit()
	orders.RecordHit()

	// Both exporters share one metric family, split by the namespace label.
	require.Equal(t, 1.0, testutil.ToFloat64(users.hits.With(prometheus.Labels{"namespace": "users"})))
	require.Equal(t, 2.0, testutil.ToFloat64(orders.hits.With(prometheus.Labels{"namespace": "orders"})))
}
