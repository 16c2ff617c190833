// Package nscache provides a generic, namespaced, TTL-and-eviction-aware
// cache designed to sit in front of expensive remote lookups. Each cache owns
// an in-memory entry store with a configurable eviction strategy, per-entry
// and cache-wide expiration, a coalescing get-or-compute loader, lifecycle
// events, metrics, and an optional best-effort durable mirror for warm starts.
package nscache

import (
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/gozephyr/nscache/errors"
	"github.com/gozephyr/nscache/internal"
	"github.com/gozephyr/nscache/metrics"
	"github.com/gozephyr/nscache/policy"
	"github.com/gozephyr/nscache/ttl"
)

// Entry represents one cached value with its timestamps. ExpiresAt is fixed
// at set time and never renewed by reads; the zero time means no expiration.
type Entry[V any] struct {
	Value        V         `json:"value"`
	CreatedAt    time.Time `json:"createdAt"`
	LastAccessed time.Time `json:"lastAccessed"`
	ExpiresAt    time.Time `json:"expiresAt"`
	Size         int64     `json:"size"`
}

// Cache is a namespaced cache instance. A single instance is shared by all
// callers within a namespace and is safe for concurrent use. Callers never
// hold references into cache internals; values move through the get/set
// contract only.
type Cache[V any] struct {
	namespace string
	opts      *Options

	mu      sync.Mutex
	entries map[string]*Entry[V]
	pol     policy.Policy
	memory  int64

	exporter metrics.Exporter
	events   *notifier
	group    singleflight.Group
	tracer   trace.Tracer
	log      *slog.Logger

	sweepTicker *time.Ticker
	sweepStop   chan struct{}
	sweepDone   chan struct{}
	closeOnce   sync.Once
	closed      atomic.Bool
}

// New creates a cache for the given namespace. Configuration problems (empty
// namespace, non-positive max size, unknown strategy, negative default TTL)
// fail fast instead of being silently substituted.
func New[V any](namespace string, opts ...Option) (*Cache[V], error) {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	if namespace == "" {
		return nil, errors.Wrap("New", "", errors.ErrInvalidNamespace)
	}
	if options.MaxSize <= 0 {
		return nil, errors.Wrap("New", namespace, errors.ErrInvalidMaxSize)
	}
	if err := ttl.Validate(options.TTLConfig.Default); err != nil {
		return nil, err
	}

	pol, err := policy.New(options.Strategy)
	if err != nil {
		return nil, err
	}

	exporter := options.Exporter
	if !options.EnableMetrics {
		exporter = metrics.NewNoop()
	} else if exporter == nil {
		exporter = metrics.NewStandard()
	}

	c := &Cache[V]{
		namespace: namespace,
		opts:      options,
		entries:   make(map[string]*Entry[V]),
		pol:       pol,
		exporter:  exporter,
		events:    newNotifier(),
		tracer:    otel.Tracer("github.com/gozephyr/nscache"),
		log:       options.Logger.With("namespace", namespace),
	}

	if options.Surface != nil {
		c.warmStart()
	}

	if options.CleanupInterval > 0 {
		c.sweepTicker = time.NewTicker(options.CleanupInterval)
		c.sweepStop = make(chan struct{})
		c.sweepDone = make(chan struct{})
		go c.sweep()
	}

	return c, nil
}

// Namespace returns the cache's namespace.
func (c *Cache[V]) Namespace() string {
	return c.namespace
}

// Get retrieves a live value. An expired entry is logically absent: it is
// removed on read, reported as a miss, and announced with an expired event
// rather than a plain miss.
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V
	if c.closed.Load() {
		return zero, false
	}

	now := time.Now()
	c.mu.Lock()
	ent, ok := c.entries[key]
	if !ok {
		c.mu.Unlock()
		c.exporter.RecordMiss()
		c.emit(EventMiss, key)
		return zero, false
	}
	if ttl.IsExpired(ent.ExpiresAt, now) {
		c.removeLocked(key, ent)
		size, mem := int64(len(c.entries)), c.memory
		c.mu.Unlock()
		c.exporter.RecordMiss()
		c.exporter.RecordExpiration()
		c.syncGauges(size, mem)
		c.emit(EventExpired, key)
		c.mirrorDelete(key)
		return zero, false
	}

	// Liveness settled first so the policy never sees a stale touch.
	ent.LastAccessed = now
	c.pol.OnGet(key)
	value := ent.Value
	c.mu.Unlock()

	c.exporter.RecordHit()
	c.emit(EventHit, key)
	return value, true
}

// Set stores a value. A zero ttl applies the cache-wide default; ttl.NoExpiry
// pins the entry until evicted. Inserting a new key at capacity evicts
// victims before the insert so the size limit never transiently breaks;
// overwriting an existing key never evicts.
func (c *Cache[V]) Set(key string, value V, ttlArg time.Duration) error {
	if c.closed.Load() {
		return errors.Wrap("Set", key, errors.ErrCacheClosed)
	}

	now := time.Now()
	ent := &Entry[V]{
		Value:        value,
		CreatedAt:    now,
		LastAccessed: now,
		ExpiresAt:    ttl.ExpiresAt(now, ttlArg, c.opts.TTLConfig),
	}

	// One serialization covers both the memory estimate and the mirror.
	var payload []byte
	var serr error
	if c.opts.Surface != nil || c.opts.EnableMetrics {
		payload, serr = json.Marshal(value)
	}
	ent.Size = int64(len(key)+len(payload)) + metrics.PerEntryOverhead

	var evicted []string
	c.mu.Lock()
	old, exists := c.entries[key]
	if !exists {
		for len(c.entries) >= c.opts.MaxSize {
			victim, ok := c.pol.Evict()
			if !ok {
				break
			}
			if v, present := c.entries[victim]; present {
				delete(c.entries, victim)
				c.memory -= v.Size
			}
			evicted = append(evicted, victim)
		}
	} else {
		c.memory -= old.Size
	}
	c.entries[key] = ent
	c.pol.OnSet(key)
	c.memory += ent.Size
	size, mem := int64(len(c.entries)), c.memory
	c.mu.Unlock()

	for _, victim := range evicted {
		c.exporter.RecordEviction()
		c.emit(EventEvict, victim)
		c.mirrorDelete(victim)
	}

	c.exporter.RecordSet()
	c.syncGauges(size, mem)
	c.emit(EventSet, key)

	if serr != nil {
		c.reportError("Set", key, errors.Wrap("Set", key, errors.ErrSerialization))
	} else {
		c.mirrorSet(key, ent, payload)
	}
	return nil
}

// Has reports whether a live entry exists without updating recency or the
// hit/miss counters. An expired-but-present entry is treated as absent and
// removed, consistent with Get.
func (c *Cache[V]) Has(key string) bool {
	if c.closed.Load() {
		return false
	}

	now := time.Now()
	c.mu.Lock()
	ent, ok := c.entries[key]
	if !ok {
		c.mu.Unlock()
		return false
	}
	if ttl.IsExpired(ent.ExpiresAt, now) {
		c.removeLocked(key, ent)
		size, mem := int64(len(c.entries)), c.memory
		c.mu.Unlock()
		c.exporter.RecordExpiration()
		c.syncGauges(size, mem)
		c.emit(EventExpired, key)
		c.mirrorDelete(key)
		return false
	}
	c.mu.Unlock()
	return true
}

// Delete removes an entry. It is idempotent: removing an absent key returns
// false without error.
func (c *Cache[V]) Delete(key string) bool {
	if c.closed.Load() {
		return false
	}

	c.mu.Lock()
	ent, ok := c.entries[key]
	if !ok {
		c.mu.Unlock()
		return false
	}
	c.removeLocked(key, ent)
	size, mem := int64(len(c.entries)), c.memory
	c.mu.Unlock()

	c.syncGauges(size, mem)
	c.emit(EventDelete, key)
	c.mirrorDelete(key)
	return true
}

// Clear removes every entry and returns the count removed. Counters persist
// across Clear; only entries are dropped.
func (c *Cache[V]) Clear() int {
	if c.closed.Load() {
		return 0
	}

	c.mu.Lock()
	count := len(c.entries)
	c.entries = make(map[string]*Entry[V])
	c.pol.OnClear()
	c.memory = 0
	c.mu.Unlock()

	c.syncGauges(0, 0)
	c.events.emit(Event{
		Kind:      EventClear,
		Namespace: c.namespace,
		Count:     count,
		Timestamp: time.Now(),
	})
	c.mirrorClear()
	return count
}

// Len returns the current number of entries, including any not yet swept
// expired ones.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns a point-in-time metrics snapshot.
func (c *Cache[V]) Stats() metrics.Snapshot {
	snap := c.exporter.Snapshot()
	snap.Namespace = c.namespace
	snap.MaxSize = int64(c.opts.MaxSize)

	c.mu.Lock()
	snap.Size = int64(len(c.entries))
	snap.MemoryBytes = c.memory
	c.mu.Unlock()
	return snap
}

// On subscribes a handler to an event kind and returns its unsubscribe
// function.
func (c *Cache[V]) On(kind EventKind, h Handler) func() {
	return c.events.on(kind, h)
}

// Close stops the background sweep, clears all entries, detaches listeners,
// and closes the durable surface. The mirror's contents are left in place
// for the next warm start. Close is idempotent.
func (c *Cache[V]) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.closed.Store(true)

		if c.sweepStop != nil {
			close(c.sweepStop)
			<-c.sweepDone
			c.sweepTicker.Stop()
		}

		c.mu.Lock()
		c.entries = make(map[string]*Entry[V])
		c.pol.OnClear()
		c.memory = 0
		c.mu.Unlock()

		c.events.close()

		if c.opts.Surface != nil {
			err = c.opts.Surface.Close()
		}
	})
	return err
}

// sweep periodically removes expired entries independent of access patterns,
// so keys that are never read again still leave memory.
func (c *Cache[V]) sweep() {
	defer close(c.sweepDone)
	for {
		select {
		case <-c.sweepTicker.C:
			c.removeExpired()
		case <-c.sweepStop:
			return
		}
	}
}

// removeExpired removes every dead entry and emits a single aggregate
// cleanup event carrying the count.
func (c *Cache[V]) removeExpired() int {
	now := time.Now()

	c.mu.Lock()
	var removed []string
	for key, ent := range c.entries {
		if ttl.IsExpired(ent.ExpiresAt, now) {
			c.removeLocked(key, ent)
			removed = append(removed, key)
		}
	}
	size, mem := int64(len(c.entries)), c.memory
	c.mu.Unlock()

	if len(removed) == 0 {
		return 0
	}

	for _, key := range removed {
		c.exporter.RecordExpiration()
		c.mirrorDelete(key)
	}
	c.syncGauges(size, mem)
	c.events.emit(Event{
		Kind:      EventCleanup,
		Namespace: c.namespace,
		Count:     len(removed),
		Timestamp: time.Now(),
	})
	c.log.Debug("sweep removed expired entries", "count", len(removed))
	return len(removed)
}

// peek is a side-effect-free lookup used by the coalescing loader to re-check
// for a settled value inside a flight. Expired entries read as absent but are
// left for Get or the sweep to remove.
func (c *Cache[V]) peek(key string) (V, bool) {
	var zero V
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	ent, ok := c.entries[key]
	if !ok || ttl.IsExpired(ent.ExpiresAt, now) {
		return zero, false
	}
	return ent.Value, true
}

// removeLocked deletes an entry and its access-order record. Callers hold
// c.mu.
func (c *Cache[V]) removeLocked(key string, ent *Entry[V]) {
	delete(c.entries, key)
	c.pol.OnDelete(key)
	c.memory -= ent.Size
}

// syncGauges pushes size and memory gauges to the exporter.
func (c *Cache[V]) syncGauges(size, memory int64) {
	c.exporter.UpdateSize(size)
	c.exporter.UpdateMemory(memory)
}

// emit publishes a keyed event.
func (c *Cache[V]) emit(kind EventKind, key string) {
	c.events.emit(Event{
		Kind:      kind,
		Namespace: c.namespace,
		Key:       key,
		Timestamp: time.Now(),
	})
}

// reportError records and publishes an internal error that is not propagated
// to the caller.
func (c *Cache[V]) reportError(op, key string, err error) {
	c.exporter.RecordError()
	c.log.Warn("cache error", "op", op, "key", key, "err", err)
	c.events.emit(Event{
		Kind:      EventError,
		Namespace: c.namespace,
		Key:       key,
		Err:       err,
		Timestamp: time.Now(),
	})
}

// storageKey builds the durable-surface key for a cache key.
func (c *Cache[V]) storageKey(key string) string {
	return internal.StorageKey(c.namespace, key)
}
