// Package store provides durable surfaces for the cache's optional mirror: a
// process-wide key/value resource partitioned by namespace-prefixed keys.
// Implementations cover in-memory (tests), filesystem, Redis, and SQLite
// backings. The mirror treats every surface operation as best-effort; the
// in-memory cache remains the source of truth.
package store

import "context"

// Surface is the pluggable durable backing consumed by the cache mirror.
// Values are opaque serialized entries. Implementations must be safe for
// concurrent use within a single process; cross-process locking is out of
// scope.
type Surface interface {
	// Get retrieves the value stored under key. The boolean reports presence.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes the value stored under key. Deleting an absent key is
	// not an error.
	Delete(ctx context.Context, key string) error

	// Keys enumerates all stored keys beginning with prefix.
	Keys(ctx context.Context, prefix string) ([]string, error)

	// Clear removes every key beginning with prefix.
	Clear(ctx context.Context, prefix string) error

	// Close releases any resources held by the surface.
	Close() error
}
