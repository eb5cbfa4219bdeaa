// Package cache stores rendered chart artifacts.
//
// The CLI renders the same data file repeatedly while a chart is being
// tuned. Output depends only on the tree, the widget configuration, the
// selection state, and the format, so [RenderKey] hashes those and the
// result is stored in a [FileCache] under the user cache directory.
//
//	c, _ := cache.NewFileCache(dir)
//	key := cache.RenderKey(snapshotJSON, "svg")
//	if data, ok, _ := c.Get(ctx, key); ok { ... }
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with optional expiry.
type Cache interface {
	// Get returns the stored value and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	Delete(ctx context.Context, key string) error
	Close() error
}

// RenderKey builds the cache key of a rendered artifact. state is any
// value that fully describes the drawn chart.
func RenderKey(state any, format string) string {
	return hashKey("render", format, state)
}
