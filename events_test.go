package nscache

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEventsSetDeleteClear(t *testing.T) {
	cache, err := New[string]("events")
	require.NoError(t, err)
	defer cache.Close()

	var sets, deletes []Event
	var clears []Event
	cache.On(EventSet, func(ev Event) { sets = append(sets, ev) })
	cache.On(EventDelete, func(ev Event) { deletes = append(deletes, ev) })
	cache.On(EventClear, func(ev Event) { clears = append(clears, ev) })

	require.NoError(t, cache.Set("a", "1", 0))
	require.NoError(t, cache.Set("b", "2", 0))
	require.True(t, cache.Delete("a"))
	cache.Clear()

	require.Len(t, sets, 2)
	require.Equal(t, "a", sets[0].Key)
	require.Equal(t, "events", sets[0].Namespace)
	require.False(t, sets[0].Timestamp.IsZero())

	require.Len(t, deletes, 1)
	require.Equal(t, "a", deletes[0].Key)

	require.Len(t, clears, 1)
	require.Equal(t, 1, clears[0].Count)
}

func TestEventsHitMissEvict(t *testing.T) {
	cache, err := New[string]("events-hm", WithMaxSize(1))
	require.NoError(t, err)
	defer cache.Close()

	var hits, misses, evicts []Event
	cache.On(EventHit, func(ev Event) { hits = append(hits, ev) })
	cache.On(EventMiss, func(ev Event) { misses = append(misses, ev) })
	cache.On(EventEvict, func(ev Event) { evicts = append(evicts, ev) })

	_, _ = cache.Get("absent")
	require.NoError(t, cache.Set("a", "1", 0))
	_, _ = cache.Get("a")
	require.NoError(t, cache.Set("b", "2", 0))

	require.Len(t, misses, 1)
	require.Equal(t, "absent", misses[0].Key)
	require.Len(t, hits, 1)
	require.Equal(t, "a", hits[0].Key)
	require.Len(t, evicts, 1)
	require.Equal(t, "a", evicts[0].Key)
}

func TestEventsUnsubscribe(t *testing.T) {
	cache, err := New[string]("events-unsub")
	require.NoError(t, err)
	defer cache.Close()

	count := 0
	off := cache.On(EventSet, func(Event) { count++ })

	require.NoError(t, cache.Set("a", "1", 0))
	off()
	off() // double unsubscribe is harmless
	require.NoError(t, cache.Set("b", "2", 0))

	require.Equal(t, 1, count)
}

func TestEventsDetachedOnClose(t *testing.T) {
	cache, err := New[string]("events-close")
	require.NoError(t, err)

	count := 0
	cache.On(EventSet, func(Event) { count++ })
	require.NoError(t, cache.Close())

	// Subscriptions after close are ignored.
	cache.On(EventSet, func(Event) { count++ })
	require.Equal(t, 0, count)
}
