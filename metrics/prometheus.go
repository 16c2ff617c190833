package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus implements Exporter using Prometheus metrics labelled by cache
// namespace. Internal counters back Snapshot so reads never touch the
// Prometheus registry.
type Prometheus struct {
	hits        *prometheus.CounterVec
	misses      *prometheus.CounterVec
	sets        *prometheus.CounterVec
	evictions   *prometheus.CounterVec
	expirations *prometheus.CounterVec
	errors      *prometheus.CounterVec
	size        *prometheus.GaugeVec
	memory      *prometheus.GaugeVec

	internal Standard
	labels   prometheus.Labels
}

// registerCounterVec registers a CounterVec, reusing an existing collector
// when another cache already registered the same metric family.
func registerCounterVec(reg prometheus.Registerer, name, help string) (*prometheus.CounterVec, error) {
	vec := prometheus.NewCounterVec(prometheus.CounterOpts{Name: name, Help: help}, []string{"namespace"})
	if err := reg.Register(vec); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return are.ExistingCollector.(*prometheus.CounterVec), nil
		}
		return nil, err
	}
	return vec, nil
}

// registerGaugeVec registers a GaugeVec, reusing an existing collector when
// another cache already registered the same metric family.
func registerGaugeVec(reg prometheus.Registerer, name, help string) (*prometheus.GaugeVec, error) {
	vec := prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: name, Help: help}, []string{"namespace"})
	if err := reg.Register(vec); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return are.ExistingCollector.(*prometheus.GaugeVec), nil
		}
		return nil, err
	}
	return vec, nil
}

// NewPrometheus creates a Prometheus exporter for the given namespace and
// registers its collectors with reg. A nil reg uses the default registerer.
func NewPrometheus(namespace string, reg prometheus.Registerer) (*Prometheus, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	e := &Prometheus{labels: prometheus.Labels{"namespace": namespace}}

	var err error
	if e.hits, err = registerCounterVec(reg, "cache_hits_total", "Total number of cache hits"); err != nil {
		return nil, err
	}
	if e.misses, err = registerCounterVec(reg, "cache_misses_total", "Total number of cache misses"); err != nil {
		return nil, err
	}
	if e.sets, err = registerCounterVec(reg, "cache_sets_total", "Total number of cache writes"); err != nil {
		return nil, err
	}
	if e.evictions, err = registerCounterVec(reg, "cache_evictions_total", "Total number of capacity evictions"); err != nil {
		return nil, err
	}
	if e.expirations, err = registerCounterVec(reg, "cache_expirations_total", "Total number of TTL expirations"); err != nil {
		return nil, err
	}
	if e.errors, err = registerCounterVec(reg, "cache_errors_total", "Total number of internal cache errors"); err != nil {
		return nil, err
	}
	if e.size, err = registerGaugeVec(reg, "cache_size", "Current number of items in the cache"); err != nil {
		return nil, err
	}
	if e.memory, err = registerGaugeVec(reg, "cache_memory_bytes", "Estimated memory usage of the cache"); err != nil {
		return nil, err
	}

	return e, nil
}

// RecordHit implements Exporter.
func (e *Prometheus) RecordHit() {
	e.hits.With(e.labels).Inc()
	e.internal.RecordHit()
}

// RecordMiss implements Exporter.
func (e *Prometheus) RecordMiss() {
	e.misses.With(e.labels).Inc()
	e.internal.RecordMiss()
}

// RecordSet implements Exporter.
func (e *Prometheus) RecordSet() {
	e.sets.With(e.labels).Inc()
	e.internal.RecordSet()
}

// RecordEviction implements Exporter.
func (e *Prometheus) RecordEviction() {
	e.evictions.With(e.labels).Inc()
	e.internal.RecordEviction()
}

// RecordExpiration implements Exporter.
func (e *Prometheus) RecordExpiration() {
	e.expirations.With(e.labels).Inc()
	e.internal.RecordExpiration()
}

// RecordError implements Exporter.
func (e *Prometheus) RecordError() {
	e.errors.With(e.labels).Inc()
	e.internal.RecordError()
}

// UpdateSize implements Exporter.
func (e *Prometheus) UpdateSize(size int64) {
	e.size.With(e.labels).Set(float64(size))
	e.internal.UpdateSize(size)
}

// UpdateMemory implements Exporter.
func (e *Prometheus) UpdateMemory(bytes int64) {
	e.memory.With(e.labels).Set(float64(bytes))
	e.internal.UpdateMemory(bytes)
}

// Snapshot implements Exporter.
func (e *Prometheus) Snapshot() Snapshot {
	return e.internal.Snapshot()
}
