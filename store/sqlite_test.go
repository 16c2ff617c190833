package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSQLiteSurfaceRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLite(ctx, ":memory:")
	require.NoError(t, err)
	defer s.Close()

	_, found, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, s.Set(ctx, "cache:a:k", []byte("v1")))
	require.NoError(t, s.Set(ctx, "cache:a:k", []byte("v2"))) // upsert

	v, found, err := s.Get(ctx, "cache:a:k")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("v2"), v)

	require.NoError(t, s.Delete(ctx, "cache:a:k"))
	require.NoError(t, s.Delete(ctx, "cache:a:k")) // idempotent
	_, found, err = s.Get(ctx, "cache:a:k")
	require.NoError(t, err)
	require.False(t, found)
}

func TestSQLiteSurfacePrefixScans(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLite(ctx, ":memory:")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Set(ctx, "cache:a:k1", []byte("1")))
	require.NoError(t, s.Set(ctx, "cache:a:k2", []byte("2")))
	require.NoError(t, s.Set(ctx, "cache:ab:k1", []byte("3")))
	require.NoError(t, s.Set(ctx, "cache:b:k1", []byte("4")))

	keys, err := s.Keys(ctx, "cache:a:")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"cache:a:k1", "cache:a:k2"}, keys)

	require.NoError(t, s.Clear(ctx, "cache:a:"))

	keys, err = s.Keys(ctx, "cache:")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"cache:ab:k1", "cache:b:k1"}, keys)
}

func TestSQLiteSurfacePersistsAcrossOpens(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "entries.db")

	s, err := NewSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "cache:a:k", []byte("v")))
	require.NoError(t, s.Close())

	s, err = NewSQLite(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	v, found, err := s.Get(ctx, "cache:a:k")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("v"), v)
}

func TestNextPrefix(t *testing.T) {
	require.Equal(t, "cache;", nextPrefix("cache:"))
	require.Equal(t, "b", nextPrefix("a"))
	require.Equal(t, "a\xff", nextPrefix("a\xfe"))
	require.Equal(t, "\xff\xff\xff", nextPrefix("\xff\xff"))
}
