// Package ttl provides functionality for managing time-to-live values in the
// cache: computing expiration instants, checking liveness, and validating
// configured durations.
package ttl

import (
	"time"

	"github.com/gozephyr/nscache/errors"
)

// NoExpiry marks an entry that never expires, overriding any cache-wide
// default. Passing it as a per-call TTL pins the entry until evicted.
const NoExpiry = time.Duration(-1)

// Config represents configuration for TTL behavior.
type Config struct {
	// Default is the cache-wide time-to-live applied when a Set call does
	// not supply its own. Zero means entries never expire by default.
	Default time.Duration
}

// DefaultConfig returns the default TTL configuration: no expiry.
func DefaultConfig() Config {
	return Config{}
}

// Validate checks a configured TTL duration. Negative durations are only
// meaningful as the per-call NoExpiry marker, never as configuration.
func Validate(d time.Duration) error {
	if d < 0 {
		return errors.Wrap("ttl.Validate", "", errors.ErrInvalidTTL)
	}
	return nil
}

// ExpiresAt computes the expiration instant for an entry created at now.
// A positive ttl overrides the configured default; zero falls back to the
// default; NoExpiry (or any negative value) yields the zero time, meaning
// the entry never expires.
func ExpiresAt(now time.Time, ttl time.Duration, config Config) time.Time {
	switch {
	case ttl > 0:
		return now.Add(ttl)
	case ttl < 0:
		return time.Time{}
	case config.Default > 0:
		return now.Add(config.Default)
	default:
		return time.Time{}
	}
}

// IsExpired reports whether an expiration instant has passed at now.
// The zero time means no expiration.
func IsExpired(expiresAt, now time.Time) bool {
	if expiresAt.IsZero() {
		return false
	}
	return now.After(expiresAt)
}
