// Package config loads per-namespace cache profiles from a TOML file, so
// services can declare their caches instead of hardcoding construction
// parameters.
//
// Example:
//
//	[caches.summaries]
//	max_size = 500
//	ttl = "15m"
//	strategy = "recency"
//	durable_mirror = true
//	cleanup_interval = "60s"
package config

import (
	"fmt"
	"os"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	nscache "github.com/gozephyr/nscache"
	"github.com/gozephyr/nscache/errors"
	"github.com/gozephyr/nscache/policy"
	"github.com/gozephyr/nscache/store"
)

// Profile declares the configuration of one namespace. Durations are TOML
// strings in Go duration syntax ("15m", "60s"); empty means "use the cache
// default".
type Profile struct {
	MaxSize         int    `toml:"max_size"`
	TTL             string `toml:"ttl"`
	Strategy        string `toml:"strategy"`
	DurableMirror   bool   `toml:"durable_mirror"`
	Metrics         *bool  `toml:"metrics"`
	CleanupInterval string `toml:"cleanup_interval"`
}

// File is the root of the configuration document.
type File struct {
	Caches map[string]Profile `toml:"caches"`
}

// Load reads and validates a configuration file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses and validates configuration data.
func Parse(data []byte) (*File, error) {
	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("config: %w: %v", errors.ErrInvalidConfigFile, err)
	}
	for namespace, profile := range f.Caches {
		if err := profile.validate(); err != nil {
			return nil, fmt.Errorf("config: cache %q: %w", namespace, err)
		}
	}
	return &f, nil
}

// Profile returns the profile for a namespace.
func (f *File) Profile(namespace string) (Profile, error) {
	p, ok := f.Caches[namespace]
	if !ok {
		return Profile{}, errors.Wrap("config.Profile", namespace, errors.ErrProfileNotFound)
	}
	return p, nil
}

// validate rejects profiles the cache constructor would refuse, so
// misconfiguration surfaces at load time rather than at first use.
func (p Profile) validate() error {
	if p.MaxSize < 0 {
		return errors.ErrInvalidMaxSize
	}
	if p.Strategy != "" {
		switch policy.Strategy(p.Strategy) {
		case policy.Recency, policy.InsertionOrder:
		default:
			return errors.Wrap("config.validate", p.Strategy, errors.ErrUnknownStrategy)
		}
	}
	if _, err := parseDuration(p.TTL); err != nil {
		return fmt.Errorf("ttl: %w", err)
	}
	if _, err := parseDuration(p.CleanupInterval); err != nil {
		return fmt.Errorf("cleanup_interval: %w", err)
	}
	return nil
}

// Options converts the profile into cache options. The mirror surface is
// supplied by the caller and only applied when the profile enables the
// durable mirror; pass nil when no surface is available.
func (p Profile) Options(mirror store.Surface) []nscache.Option {
	var opts []nscache.Option
	if p.MaxSize > 0 {
		opts = append(opts, nscache.WithMaxSize(p.MaxSize))
	}
	if d, err := parseDuration(p.TTL); err == nil && d > 0 {
		opts = append(opts, nscache.WithTTL(d))
	}
	if p.Strategy != "" {
		opts = append(opts, nscache.WithStrategy(policy.Strategy(p.Strategy)))
	}
	if p.Metrics != nil {
		opts = append(opts, nscache.WithMetrics(*p.Metrics))
	}
	if d, err := parseDuration(p.CleanupInterval); err == nil && d > 0 {
		opts = append(opts, nscache.WithCleanupInterval(d))
	}
	if p.DurableMirror && mirror != nil {
		opts = append(opts, nscache.WithMirror(mirror))
	}
	return opts
}

// parseDuration parses an optional duration string; empty means zero.
func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, errors.ErrInvalidTTL
	}
	return d, nil
}
