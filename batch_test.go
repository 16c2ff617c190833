package nscache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBatchOperations(t *testing.T) {
	cache, err := New[int]("batch")
	require.NoError(t, err)
	defer cache.Close()

	entries := map[string]int{"a": 1, "b": 2, "c": 3}
	require.NoError(t, cache.SetMany(context.Background(), entries, 0))

	got := cache.GetMany([]string{"a", "b", "c", "missing"})
	require.Equal(t, entries, got)

	require.Equal(t, 2, cache.DeleteMany([]string{"a", "b", "missing"}))
	require.Equal(t, 1, cache.Len())
}

func TestSetManyCanceledContext(t *testing.T) {
	cache, err := New[int]("batch-ctx")
	require.NoError(t, err)
	defer cache.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = cache.SetMany(ctx, map[string]int{"a": 1}, 0)
	require.ErrorIs(t, err, context.Canceled)
}
