package nscache

import (
	"io"
	"log/slog"
	"time"

	"github.com/gozephyr/nscache/metrics"
	"github.com/gozephyr/nscache/policy"
	"github.com/gozephyr/nscache/store"
	"github.com/gozephyr/nscache/ttl"
)

// Default configuration values.
const (
	// DefaultMaxSize is the default maximum number of entries per cache.
	DefaultMaxSize = 100

	// DefaultCleanupInterval is the default background sweep interval. The
	// sweep runs on a fixed cadence independent of any single entry's TTL.
	DefaultCleanupInterval = 60 * time.Second
)

// Options represents cache configuration. The configuration is immutable for
// the lifetime of a cache instance.
type Options struct {
	// MaxSize is the maximum number of entries the cache can hold.
	MaxSize int

	// TTLConfig is the configuration for TTL behavior.
	TTLConfig ttl.Config

	// Strategy selects the eviction policy.
	Strategy policy.Strategy

	// EnableMetrics enables counter tracking. When disabled, Stats returns
	// an empty snapshot.
	EnableMetrics bool

	// CleanupInterval is the interval of the background expiration sweep.
	// Zero or negative disables the sweep.
	CleanupInterval time.Duration

	// Surface is the durable mirror backing. Nil disables mirroring.
	Surface store.Surface

	// Exporter overrides the metrics exporter. Nil selects the standard
	// atomic exporter (or a no-op one when metrics are disabled).
	Exporter metrics.Exporter

	// Logger receives diagnostics for best-effort failures and sweeps.
	Logger *slog.Logger
}

// Option is a function that configures cache options.
type Option func(*Options)

// WithMaxSize sets the maximum number of entries.
func WithMaxSize(size int) Option {
	return func(o *Options) {
		o.MaxSize = size
	}
}

// WithTTL sets the cache-wide default time-to-live.
func WithTTL(d time.Duration) Option {
	return func(o *Options) {
		o.TTLConfig.Default = d
	}
}

// WithTTLConfig sets the full TTL configuration.
func WithTTLConfig(config ttl.Config) Option {
	return func(o *Options) {
		o.TTLConfig = config
	}
}

// WithStrategy selects the eviction strategy.
func WithStrategy(s policy.Strategy) Option {
	return func(o *Options) {
		o.Strategy = s
	}
}

// WithMetrics enables or disables counter tracking.
func WithMetrics(enable bool) Option {
	return func(o *Options) {
		o.EnableMetrics = enable
	}
}

// WithCleanupInterval sets the background sweep interval.
func WithCleanupInterval(interval time.Duration) Option {
	return func(o *Options) {
		o.CleanupInterval = interval
	}
}

// WithMirror enables best-effort durable mirroring onto the given surface.
func WithMirror(s store.Surface) Option {
	return func(o *Options) {
		o.Surface = s
	}
}

// WithExporter sets the metrics exporter.
func WithExporter(e metrics.Exporter) Option {
	return func(o *Options) {
		o.Exporter = e
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// DefaultOptions returns the default cache options.
func DefaultOptions() *Options {
	return &Options{
		MaxSize:         DefaultMaxSize,
		TTLConfig:       ttl.DefaultConfig(),
		Strategy:        policy.Recency,
		EnableMetrics:   true,
		CleanupInterval: DefaultCleanupInterval,
		Logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}
