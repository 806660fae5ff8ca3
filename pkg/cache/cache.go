// Package cache stores intermediate pipeline results by content hash.
//
// The pipeline caches two things: trees fetched from remote sources, and
// laid-out scenes keyed by the hash of the tree plus the layout settings.
// Backends implement [Cache]: [FileCache] for the CLI, [RedisCache] for a
// shared deployment, and [NullCache] to disable caching.
//
// Keys come from a [Keyer] so that callers never build key strings by hand:
//
//	k := cache.NewDefaultKeyer()
//	key := k.SceneKey(cache.Hash(treeJSON), settings)
//	if data, ok, _ := c.Get(ctx, key); ok {
//	    // use cached scene
//	}
package cache

import (
	"context"
	"time"
)

// Default TTLs.
const (
	TreeTTL     = time.Hour
	SceneTTL    = 7 * 24 * time.Hour
	ArtifactTTL = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the value and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data. A ttl of 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by caches that can drop every entry.
type Clearer interface {
	Clear(ctx context.Context) error
}
