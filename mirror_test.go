package nscache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gozephyr/nscache/internal"
	"github.com/gozephyr/nscache/store"
)

// failingSurface simulates a durable surface where every operation fails,
// e.g. storage disabled or quota exceeded.
type failingSurface struct{}

var errSurfaceDown = errors.New("surface down")

func (failingSurface) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errSurfaceDown
}
func (failingSurface) Set(context.Context, string, []byte) error { return errSurfaceDown }
func (failingSurface) Delete(context.Context, string) error      { return errSurfaceDown }
func (failingSurface) Keys(context.Context, string) ([]string, error) {
	return nil, errSurfaceDown
}
func (failingSurface) Clear(context.Context, string) error { return errSurfaceDown }
func (failingSurface) Close() error                        { return nil }

func TestMirrorWritesAndRemoves(t *testing.T) {
	surface := store.NewMemory()
	cache, err := New[string]("mirror", WithMirror(surface))
	require.NoError(t, err)
	defer cache.Close()

	ctx := context.Background()
	require.NoError(t, cache.Set("k", "v", 0))

	_, found, err := surface.Get(ctx, internal.StorageKey("mirror", "k"))
	require.NoError(t, err)
	require.True(t, found)

	require.True(t, cache.Delete("k"))
	_, found, err = surface.Get(ctx, internal.StorageKey("mirror", "k"))
	require.NoError(t, err)
	require.False(t, found)
}

func TestMirrorWarmStart(t *testing.T) {
	surface := store.NewMemory()

	first, err := New[string]("warm", WithMirror(surface))
	require.NoError(t, err)
	require.NoError(t, first.Set("k1", "v1", 0))
	require.NoError(t, first.Set("k2", "v2", time.Hour))
	// Closing leaves the mirror in place for the next start.
	require.NoError(t, first.Close())
	require.Equal(t, 2, surface.Len())

	second, err := New[string]("warm", WithMirror(surface))
	require.NoError(t, err)
	defer second.Close()

	value, ok := second.Get("k1")
	require.True(t, ok)
	require.Equal(t, "v1", value)
	value, ok = second.Get("k2")
	require.True(t, ok)
	require.Equal(t, "v2", value)
	require.Equal(t, 2, second.Len())
}

func TestMirrorWarmStartDiscardsExpired(t *testing.T) {
	surface := store.NewMemory()

	first, err := New[string]("stale", WithMirror(surface))
	require.NoError(t, err)
	require.NoError(t, first.Set("dead", "v", 10*time.Millisecond))
	require.NoError(t, first.Set("live", "v", time.Hour))
	require.NoError(t, first.Close())

	time.Sleep(20 * time.Millisecond)

	second, err := New[string]("stale", WithMirror(surface))
	require.NoError(t, err)
	defer second.Close()

	require.False(t, second.Has("dead"))
	require.True(t, second.Has("live"))

	// The expired durable copy was deleted during the scan.
	require.Equal(t, 1, surface.Len())
}

func TestMirrorPreservesTimestamps(t *testing.T) {
	surface := store.NewMemory()

	first, err := New[string]("stamps", WithMirror(surface))
	require.NoError(t, err)
	require.NoError(t, first.Set("k", "v", time.Hour))

	first.mu.Lock()
	created := first.entries["k"].CreatedAt
	expires := first.entries["k"].ExpiresAt
	first.mu.Unlock()
	require.NoError(t, first.Close())

	second, err := New[string]("stamps", WithMirror(surface))
	require.NoError(t, err)
	defer second.Close()

	second.mu.Lock()
	ent := second.entries["k"]
	second.mu.Unlock()
	require.NotNil(t, ent)
	require.True(t, ent.CreatedAt.Equal(created))
	require.True(t, ent.ExpiresAt.Equal(expires))
}

func TestMirrorNamespaceIsolation(t *testing.T) {
	surface := store.NewMemory()

	alpha, err := New[string]("alpha", WithMirror(surface))
	require.NoError(t, err)
	beta, err := New[string]("beta", WithMirror(surface))
	require.NoError(t, err)

	require.NoError(t, alpha.Set("k", "alpha-value", 0))
	require.NoError(t, beta.Set("k", "beta-value", 0))
	require.Equal(t, 2, surface.Len())

	// Clearing one namespace leaves the other's durable keys intact.
	alpha.Clear()
	require.Equal(t, 1, surface.Len())

	_, found, err := surface.Get(context.Background(), internal.StorageKey("beta", "k"))
	require.NoError(t, err)
	require.True(t, found)
}

func TestMirrorFailuresAreBestEffort(t *testing.T) {
	cache, err := New[string]("besteffort", WithMirror(failingSurface{}))
	require.NoError(t, err)
	defer cache.Close()

	var errs []Event
	cache.On(EventError, func(ev Event) { errs = append(errs, ev) })

	// In-memory operation succeeds despite the broken surface.
	require.NoError(t, cache.Set("k", "v", 0))
	value, ok := cache.Get("k")
	require.True(t, ok)
	require.Equal(t, "v", value)

	require.NotEmpty(t, errs)
	require.Greater(t, cache.Stats().Errors, int64(0))
}

func TestMirrorWithFileSurface(t *testing.T) {
	dir := t.TempDir()
	surface, err := store.NewFile(&store.FileConfig{
		Directory:     dir,
		FileExtension: ".cache",
		Compress:      true,
	})
	require.NoError(t, err)

	first, err := New[int]("filemirror", WithMirror(surface))
	require.NoError(t, err)
	require.NoError(t, first.Set("answer", 42, 0))
	require.NoError(t, first.Close())

	surface, err = store.NewFile(&store.FileConfig{
		Directory:     dir,
		FileExtension: ".cache",
		Compress:      true,
	})
	require.NoError(t, err)

	second, err := New[int]("filemirror", WithMirror(surface))
	require.NoError(t, err)
	defer second.Close()

	value, ok := second.Get("answer")
	require.True(t, ok)
	require.Equal(t, 42, value)
}
