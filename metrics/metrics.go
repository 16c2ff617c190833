// Package metrics provides collection and reporting of cache performance
// metrics: hit/miss/set/eviction counters and memory estimation, exposed as
// point-in-time snapshots.
package metrics

import (
	"math"
	"sync/atomic"
)

// PerEntryOverhead is the fixed bookkeeping cost, in bytes, added to the
// memory estimate for every cached entry on top of its key and serialized
// value lengths.
const PerEntryOverhead = 96

// Snapshot is a point-in-time copy of cache metrics safe to hand to callers.
type Snapshot struct {
	Namespace   string  `json:"namespace"`
	Size        int64   `json:"size"`
	MaxSize     int64   `json:"maxSize"`
	Hits        int64   `json:"hits"`
	Misses      int64   `json:"misses"`
	Sets        int64   `json:"sets"`
	Evictions   int64   `json:"evictions"`
	Expirations int64   `json:"expirations"`
	Errors      int64   `json:"errors"`
	HitRate     float64 `json:"hitRate"`
	MemoryBytes int64   `json:"memoryBytes"`
}

// Exporter receives cache lifecycle counts. Implementations must be safe for
// concurrent use.
type Exporter interface {
	// RecordHit records a successful cache lookup.
	RecordHit()
	// RecordMiss records a failed cache lookup.
	RecordMiss()
	// RecordSet records a cache write.
	RecordSet()
	// RecordEviction records a capacity eviction.
	RecordEviction()
	// RecordExpiration records a TTL expiration.
	RecordExpiration()
	// RecordError records an internal, non-propagated error.
	RecordError()
	// UpdateSize updates the current entry count.
	UpdateSize(size int64)
	// UpdateMemory updates the estimated memory footprint in bytes.
	UpdateMemory(bytes int64)
	// Snapshot returns a copy of the current counters.
	Snapshot() Snapshot
}

// HitRate returns the hit percentage rounded to two decimals. With no
// accesses recorded it is defined as 0.
func HitRate(hits, misses int64) float64 {
	total := hits + misses
	if total == 0 {
		return 0
	}
	rate := float64(hits) / float64(total) * 100
	return math.Round(rate*100) / 100
}

// Standard is the default in-process exporter backed by atomic counters.
type Standard struct {
	hits        atomic.Int64
	misses      atomic.Int64
	sets        atomic.Int64
	evictions   atomic.Int64
	expirations atomic.Int64
	errors      atomic.Int64
	size        atomic.Int64
	memory      atomic.Int64
}

// NewStandard creates a Standard exporter.
func NewStandard() *Standard {
	return &Standard{}
}

// RecordHit implements Exporter.
func (s *Standard) RecordHit() { s.hits.Add(1) }

// RecordMiss implements Exporter.
func (s *Standard) RecordMiss() { s.misses.Add(1) }

// RecordSet implements Exporter.
func (s *Standard) RecordSet() { s.sets.Add(1) }

// RecordEviction implements Exporter.
func (s *Standard) RecordEviction() { s.evictions.Add(1) }

// RecordExpiration implements Exporter.
func (s *Standard) RecordExpiration() { s.expirations.Add(1) }

// RecordError implements Exporter.
func (s *Standard) RecordError() { s.errors.Add(1) }

// UpdateSize implements Exporter.
func (s *Standard) UpdateSize(size int64) { s.size.Store(size) }

// UpdateMemory implements Exporter.
func (s *Standard) UpdateMemory(bytes int64) { s.memory.Store(bytes) }

// Snapshot implements Exporter.
func (s *Standard) Snapshot() Snapshot {
	hits := s.hits.Load()
	misses := s.misses.Load()
	return Snapshot{
		Size:        s.size.Load(),
		Hits:        hits,
		Misses:      misses,
		Sets:        s.sets.Load(),
		Evictions:   s.evictions.Load(),
		Expirations: s.expirations.Load(),
		Errors:      s.errors.Load(),
		HitRate:     HitRate(hits, misses),
		MemoryBytes: s.memory.Load(),
	}
}

// Noop discards all metric events. It backs caches constructed with metrics
// disabled so callers never need nil checks.
type Noop struct{}

// NewNoop creates a Noop exporter.
func NewNoop() Noop { return Noop{} }

func (Noop) RecordHit()         {}
func (Noop) RecordMiss()        {}
func (Noop) RecordSet()         {}
func (Noop) RecordEviction()    {}
func (Noop) RecordExpiration()  {}
func (Noop) RecordError()       {}
func (Noop) UpdateSize(int64)   {}
func (Noop) UpdateMemory(int64) {}

// Snapshot implements Exporter.
func (Noop) Snapshot() Snapshot { return Snapshot{} }
