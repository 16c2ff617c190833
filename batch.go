package nscache

import (
	"context"
	"time"
)

// GetMany retrieves multiple values, omitting keys that are absent or
// expired. Each lookup follows the single-key Get contract, including
// per-key events and counters.
func (c *Cache[V]) GetMany(keys []string) map[string]V {
	result := make(map[string]V, len(keys))
	for _, key := range keys {
		if value, ok := c.Get(key); ok {
			result[key] = value
		}
	}
	return result
}

// SetMany stores multiple values with a shared TTL. It stops at the first
// error or context cancellation.
func (c *Cache[V]) SetMany(ctx context.Context, entries map[string]V, ttlArg time.Duration) error {
	for key, value := range entries {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := c.Set(key, value, ttlArg); err != nil {
			return err
		}
	}
	return nil
}

// DeleteMany removes multiple keys and returns the number actually removed.
func (c *Cache[V]) DeleteMany(keys []string) int {
	removed := 0
	for _, key := range keys {
		if c.Delete(key) {
			removed++
		}
	}
	return removed
}
