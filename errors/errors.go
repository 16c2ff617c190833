// Package errors provides error types and utilities for the nscache module.
package errors

import (
	"errors"
	"fmt"
)

// Common error values returned by the cache and its collaborators.
var (
	// Cache errors
	ErrCacheClosed    = errors.New("cache is closed")
	ErrKeyNotFound    = errors.New("key not found")
	ErrInvalidMaxSize = errors.New("max size must be greater than 0")

	// Configuration errors
	ErrUnknownStrategy   = errors.New("unknown eviction strategy")
	ErrInvalidTTL        = errors.New("invalid TTL value")
	ErrInvalidNamespace  = errors.New("namespace must not be empty")
	ErrProfileNotFound   = errors.New("cache profile not found")
	ErrInvalidConfigFile = errors.New("invalid configuration file")

	// Durable surface errors
	ErrStore           = errors.New("durable store operation failed")
	ErrSerialization   = errors.New("serialization error")
	ErrDeserialization = errors.New("deserialization error")
)

// CacheError carries the operation and key an error occurred for.
type CacheError struct {
	Op  string
	Key string
	Err error
}

// Error implements the error interface.
func (e *CacheError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s: key=%q: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *CacheError) Unwrap() error {
	return e.Err
}

// Is reports whether the target matches this error.
func (e *CacheError) Is(target error) bool {
	t, ok := target.(*CacheError)
	if !ok {
		return false
	}
	return e.Op == t.Op && e.Key == t.Key && errors.Is(e.Err, t.Err)
}

// Wrap wraps err with the operation and key it occurred for.
// A nil err wraps to nil.
func Wrap(op, key string, err error) error {
	if err == nil {
		return nil
	}
	return &CacheError{Op: op, Key: key, Err: err}
}

// IsKeyNotFound checks if the error is a key not found error.
func IsKeyNotFound(err error) bool {
	return errors.Is(err, ErrKeyNotFound)
}

// IsCacheClosed checks if the error is a cache closed error.
func IsCacheClosed(err error) bool {
	return errors.Is(err, ErrCacheClosed)
}

// IsUnknownStrategy checks if the error is an unknown strategy error.
func IsUnknownStrategy(err error) bool {
	return errors.Is(err, ErrUnknownStrategy)
}

// IsStore checks if the error originated in the durable surface.
func IsStore(err error) bool {
	return errors.Is(err, ErrStore)
}
