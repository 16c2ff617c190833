package nscache

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/gozephyr/nscache/errors"
)

// Factory produces the value for a key on a cache miss. It typically wraps a
// network call; the cache imposes no timeout of its own, so cancellation is
// governed entirely by the caller's context.
type Factory[V any] func(ctx context.Context) (V, error)

// GetOrSet returns the cached value for key if a live entry exists.
// Otherwise it invokes factory, stores the result with the given TTL, and
// returns it. Concurrent calls for the same absent key invoke the factory at
// most once; every waiting caller receives the single flight's value or
// error. A factory failure propagates unchanged, is not cached, and is
// announced with a factory_error event.
func (c *Cache[V]) GetOrSet(ctx context.Context, key string, factory Factory[V], ttlArg time.Duration) (V, error) {
	var zero V
	if c.closed.Load() {
		return zero, errors.Wrap("GetOrSet", key, errors.ErrCacheClosed)
	}

	if value, ok := c.Get(key); ok {
		return value, nil
	}

	result, err, _ := c.group.Do(key, func() (any, error) {
		// Another caller may have settled the key while this flight queued.
		if value, ok := c.peek(key); ok {
			return value, nil
		}

		value, err := c.load(ctx, key, factory)
		if err != nil {
			return nil, err
		}
		if err := c.Set(key, value, ttlArg); err != nil {
			return nil, err
		}
		return value, nil
	})
	if err != nil {
		return zero, err
	}
	return result.(V), nil
}

// load runs the factory inside a span. The span is a no-op unless the host
// application installed an OpenTelemetry SDK.
func (c *Cache[V]) load(ctx context.Context, key string, factory Factory[V]) (V, error) {
	ctx, span := c.tracer.Start(ctx, "nscache.load",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("cache.namespace", c.namespace),
			attribute.String("cache.key", key),
		))
	defer span.End()

	value, err := factory(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "factory failed")
		c.exporter.RecordError()
		c.events.emit(Event{
			Kind:      EventFactoryError,
			Namespace: c.namespace,
			Key:       key,
			Err:       err,
			Timestamp: time.Now(),
		})
		return value, err
	}
	span.SetStatus(codes.Ok, "")
	return value, nil
}
