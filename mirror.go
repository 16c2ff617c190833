package nscache

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gozephyr/nscache/errors"
	"github.com/gozephyr/nscache/internal"
	"github.com/gozephyr/nscache/metrics"
	"github.com/gozephyr/nscache/ttl"
)

// persistedEntry is the durable serialization of an Entry. The value is kept
// as raw JSON so the mirror never needs the concrete type to re-encode it.
// A null expiresAt means the entry never expires.
type persistedEntry struct {
	Value        json.RawMessage `json:"value"`
	CreatedAt    time.Time       `json:"createdAt"`
	LastAccessed time.Time       `json:"lastAccessed"`
	ExpiresAt    *time.Time      `json:"expiresAt"`
}

// encodeBuffers recycles scratch buffers for mirror serialization.
var encodeBuffers = sync.Pool{
	New: func() any { return new(bytes.Buffer) },
}

// warmStart pre-populates the entry store from the durable surface:
// surviving entries are loaded with their original timestamps, already-dead
// ones are deleted from the surface. Runs before the cache is shared, so no
// locking or events.
func (c *Cache[V]) warmStart() {
	ctx := context.Background()
	prefix := internal.NamespacePrefix(c.namespace)

	storageKeys, err := c.opts.Surface.Keys(ctx, prefix)
	if err != nil {
		c.reportError("warmStart", "", errors.Wrap("warmStart", "", err))
		return
	}

	now := time.Now()
	loaded := 0
	for _, storageKey := range storageKeys {
		if len(c.entries) >= c.opts.MaxSize {
			break
		}
		key, ok := internal.CacheKey(c.namespace, storageKey)
		if !ok {
			continue
		}

		data, found, err := c.opts.Surface.Get(ctx, storageKey)
		if err != nil || !found {
			if err != nil {
				c.reportError("warmStart", key, errors.Wrap("warmStart", key, err))
			}
			continue
		}

		var pe persistedEntry
		if err := json.Unmarshal(data, &pe); err != nil {
			c.reportError("warmStart", key, errors.Wrap("warmStart", key, errors.ErrDeserialization))
			_ = c.opts.Surface.Delete(ctx, storageKey)
			continue
		}

		var expiresAt time.Time
		if pe.ExpiresAt != nil {
			expiresAt = *pe.ExpiresAt
		}
		if ttl.IsExpired(expiresAt, now) {
			_ = c.opts.Surface.Delete(ctx, storageKey)
			continue
		}

		var value V
		if err := json.Unmarshal(pe.Value, &value); err != nil {
			c.reportError("warmStart", key, errors.Wrap("warmStart", key, errors.ErrDeserialization))
			_ = c.opts.Surface.Delete(ctx, storageKey)
			continue
		}

		c.entries[key] = &Entry[V]{
			Value:        value,
			CreatedAt:    pe.CreatedAt,
			LastAccessed: pe.LastAccessed,
			ExpiresAt:    expiresAt,
			Size:         int64(len(key)+len(pe.Value)) + metrics.PerEntryOverhead,
		}
		c.pol.OnSet(key)
		c.memory += c.entries[key].Size
		loaded++
	}

	if loaded > 0 {
		c.syncGauges(int64(len(c.entries)), c.memory)
		c.log.Debug("warm start loaded entries", "count", loaded)
	}
}

// mirrorSet persists an entry. payload is the already-serialized value. All
// mirror writes are best-effort: failures are reported, never propagated.
func (c *Cache[V]) mirrorSet(key string, ent *Entry[V], payload []byte) {
	if c.opts.Surface == nil {
		return
	}

	pe := persistedEntry{
		Value:        payload,
		CreatedAt:    ent.CreatedAt,
		LastAccessed: ent.LastAccessed,
	}
	if !ent.ExpiresAt.IsZero() {
		expiresAt := ent.ExpiresAt
		pe.ExpiresAt = &expiresAt
	}

	buf := encodeBuffers.Get().(*bytes.Buffer)
	buf.Reset()
	defer encodeBuffers.Put(buf)

	if err := json.NewEncoder(buf).Encode(&pe); err != nil {
		c.reportError("mirrorSet", key, errors.Wrap("mirrorSet", key, errors.ErrSerialization))
		return
	}

	data := make([]byte, buf.Len())
	copy(data, buf.Bytes())
	if err := c.opts.Surface.Set(context.Background(), c.storageKey(key), data); err != nil {
		c.reportError("mirrorSet", key, err)
	}
}

// mirrorDelete removes a key's durable copy, best-effort.
func (c *Cache[V]) mirrorDelete(key string) {
	if c.opts.Surface == nil {
		return
	}
	if err := c.opts.Surface.Delete(context.Background(), c.storageKey(key)); err != nil {
		c.reportError("mirrorDelete", key, err)
	}
}

// mirrorClear removes every durable key in this cache's namespace,
// best-effort.
func (c *Cache[V]) mirrorClear() {
	if c.opts.Surface == nil {
		return
	}
	if err := c.opts.Surface.Clear(context.Background(), internal.NamespacePrefix(c.namespace)); err != nil {
		c.reportError("mirrorClear", "", err)
	}
}
