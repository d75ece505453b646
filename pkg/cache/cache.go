// Package cache stores fetched snapshots, computed layouts and rendered
// artifacts behind one small interface.
//
// Three backends are provided:
//
//   - [NullCache]: never stores anything (caching disabled)
//   - [FileCache]: one JSON envelope per key under a local directory
//   - [RedisCache]: a shared Redis instance, for several servers behind one
//     snapshot backend
//
// Keys are produced by a [Keyer] so that every caller derives the same key
// for the same input.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key-value store with per-entry TTL.
type Cache interface {
	// Get returns the stored bytes and whether the key was present and fresh.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// TTLs per entry kind.
const (
	// TTLSnapshot is short: the backend graph changes as the site is crawled.
	TTLSnapshot = 10 * time.Minute
	// TTLLayout covers layouts, which depend only on snapshot content and
	// physics parameters.
	TTLLayout = 7 * 24 * time.Hour
	// TTLArtifact covers rendered SVG/DOT output.
	TTLArtifact = 7 * 24 * time.Hour
)
