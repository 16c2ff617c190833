package metrics

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHitRate(t *testing.T) {
	require.Equal(t, 0.0, HitRate(0, 0))
	require.Equal(t, 100.0, HitRate(5, 0))
	require.Equal(t, 0.0, HitRate(0, 5))
	require.Equal(t, 75.0, HitRate(3, 1))
	require.Equal(t, 33.33, HitRate(1, 2))
	require.Equal(t, 66.67, HitRate(2, 1))
}

func TestStandardExporter(t *testing.T) {
	s := NewStandard()

	s.RecordHit()
	s.RecordHit()
	s.RecordHit()
	s.RecordMiss()
	s.RecordSet()
	s.RecordEviction()
	s.RecordExpiration()
	s.RecordError()
	s.UpdateSize(7)
	s.UpdateMemory(4096)

	snap := s.Snapshot()
	require.Equal(t, int64(3), snap.Hits)
	require.Equal(t, int64(1), snap.Misses)
	require.Equal(t, int64(1), snap.Sets)
	require.Equal(t, int64(1), snap.Evictions)
	require.Equal(t, int64(1), snap.Expirations)
	require.Equal(t, int64(1), snap.Errors)
	require.Equal(t, int64(7), snap.Size)
	require.Equal(t, int64(4096), snap.MemoryBytes)
	require.Equal(t, 75.0, snap.HitRate)
}

func TestStandardExporterConcurrent(t *testing.T) {
	s := NewStandard()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				s.RecordHit()
				s.RecordMiss()
			}
		}()
	}
	wg.Wait()

	snap := s.Snapshot()
	require.Equal(t, int64(8000), snap.Hits)
	require.Equal(t, int64(8000), snap.Misses)
	require.Equal(t, 50.0, snap.HitRate)
}

func TestNoopExporter(t *testing.T) {
	var e Exporter = NewNoop()

	e.RecordHit()
	e.RecordMiss()
	e.RecordSet()
	e.UpdateSize(10)

	require.Equal(t, Snapshot{}, e.Snapshot())
}
