// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about widget interaction, rendering, and the render cache.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetWidgetHooks(&myWidgetHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Widget().OnClick(ctx, elementID, name, found)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Widget Hooks
// =============================================================================

// WidgetHooks receives events from the selection controller.
type WidgetHooks interface {
	// OnClick records a click; found is false for lookup misses.
	OnClick(ctx context.Context, elementID, name string, found bool)

	// OnHover records hover changes; name is empty on unhover.
	OnHover(ctx context.Context, elementID, name string)

	// OnEmit records a host notification and its delivery result.
	OnEmit(ctx context.Context, key, value string, err error)
}

// =============================================================================
// Render Hooks
// =============================================================================

// RenderHooks receives events from the renderers.
type RenderHooks interface {
	OnRenderStart(ctx context.Context, format string, leaves int)
	OnRenderComplete(ctx context.Context, format string, size int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopWidgetHooks is a no-op implementation of WidgetHooks.
type NoopWidgetHooks struct{}

func (NoopWidgetHooks) OnClick(context.Context, string, string, bool) {}
func (NoopWidgetHooks) OnHover(context.Context, string, string)       {}
func (NoopWidgetHooks) OnEmit(context.Context, string, string, error) {}

// NoopRenderHooks is a no-op implementation of RenderHooks.
type NoopRenderHooks struct{}

func (NoopRenderHooks) OnRenderStart(context.Context, string, int)                          {}
func (NoopRenderHooks) OnRenderComplete(context.Context, string, int, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	widgetHooks WidgetHooks = NoopWidgetHooks{}
	renderHooks RenderHooks = NoopRenderHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	hooksMu     sync.RWMutex
)

// SetWidgetHooks registers custom widget hooks.
// This should be called once at application startup.
func SetWidgetHooks(h WidgetHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		widgetHooks = h
	}
}

// SetRenderHooks registers custom render hooks.
func SetRenderHooks(h RenderHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		renderHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Widget returns the registered widget hooks.
func Widget() WidgetHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return widgetHooks
}

// Render returns the registered render hooks.
func Render() RenderHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return renderHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	widgetHooks = NoopWidgetHooks{}
	renderHooks = NoopRenderHooks{}
	cacheHooks = NoopCacheHooks{}
}
