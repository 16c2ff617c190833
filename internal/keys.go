// Package internal provides helpers shared across the nscache packages.
package internal

import "strings"

// keyPrefix is the leading component of every durable-surface key.
const keyPrefix = "cache"

// StorageKey builds the durable-surface key for a namespace and cache key.
// The format is "cache:<namespace>:<key>".
func StorageKey(namespace, key string) string {
	return keyPrefix + ":" + namespace + ":" + key
}

// NamespacePrefix returns the durable-surface key prefix shared by all keys
// of a namespace, including the trailing separator.
func NamespacePrefix(namespace string) string {
	return keyPrefix + ":" + namespace + ":"
}

// CacheKey extracts the cache key from a durable-surface key. It returns
// false if the storage key does not belong to the given namespace.
func CacheKey(namespace, storageKey string) (string, bool) {
	prefix := NamespacePrefix(namespace)
	if !strings.HasPrefix(storageKey, prefix) {
		return "", false
	}
	return storageKey[len(prefix):], true
}
