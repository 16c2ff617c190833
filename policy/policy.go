// Package policy provides the cache eviction strategies: recency-based (LRU)
// and insertion-order-based (FIFO).
package policy

import "github.com/gozephyr/nscache/errors"

// Strategy identifies an eviction strategy. The set is closed: strategies are
// chosen at cache construction and unknown names fail fast rather than being
// silently substituted.
type Strategy string

const (
	// Recency evicts the least recently touched key first.
	Recency Strategy = "recency"
	// InsertionOrder evicts the oldest key by creation first, regardless of
	// intervening reads.
	InsertionOrder Strategy = "insertion-order"
)

// Policy tracks key ordering for eviction decisions. Implementations mirror
// the entry store's key set: a key appears in the policy iff it is cached.
// Policies are not safe for concurrent use; the cache serializes calls.
type Policy interface {
	// OnGet is called when a key is read from the cache.
	OnGet(key string)

	// OnSet is called when a key is written to the cache.
	OnSet(key string)

	// OnDelete is called when a key is removed from the cache.
	OnDelete(key string)

	// OnClear is called when the cache is cleared.
	OnClear()

	// Evict removes and returns the next victim key.
	Evict() (string, bool)

	// Size returns the number of tracked keys.
	Size() int
}

// New creates the policy for a strategy. Unknown strategies return
// errors.ErrUnknownStrategy.
func New(s Strategy) (Policy, error) {
	switch s {
	case Recency:
		return NewRecency(), nil
	case InsertionOrder:
		return NewInsertionOrder(), nil
	default:
		return nil, errors.Wrap("policy.New", string(s), errors.ErrUnknownStrategy)
	}
}
