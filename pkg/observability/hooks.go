// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers register hooks at startup
// to receive events about draws and message delivery.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks never receive who was paired with whom. Draw events carry counts
// only, delivery events carry the recipient address of a single message.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetMatchHooks(&myMatchHooks{})
//	    observability.SetDeliveryHooks(&myDeliveryHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Match().OnRejected(ctx, n, attempt)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Match Hooks
// =============================================================================

// MatchHooks receives events from the constrained matcher.
type MatchHooks interface {
	// OnRejected records a derangement discarded because it paired
	// participants that exclude each other.
	OnRejected(ctx context.Context, n, attempt int)

	// OnMatched records an accepted assignment.
	OnMatched(ctx context.Context, n, draws, shuffles int, duration time.Duration)

	// OnExhausted records a draw that gave up after the retry limit.
	OnExhausted(ctx context.Context, n, draws int)
}

// =============================================================================
// Delivery Hooks
// =============================================================================

// DeliveryHooks receives events from message delivery.
type DeliveryHooks interface {
	// OnSent records a delivered message.
	OnSent(ctx context.Context, transport, to string, duration time.Duration)

	// OnError records a failed delivery attempt.
	OnError(ctx context.Context, transport, to string, attempt int, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopMatchHooks is a no-op implementation of MatchHooks.
type NoopMatchHooks struct{}

func (NoopMatchHooks) OnRejected(context.Context, int, int)                    {}
func (NoopMatchHooks) OnMatched(context.Context, int, int, int, time.Duration) {}
func (NoopMatchHooks) OnExhausted(context.Context, int, int)                   {}

// NoopDeliveryHooks is a no-op implementation of DeliveryHooks.
type NoopDeliveryHooks struct{}

func (NoopDeliveryHooks) OnSent(context.Context, string, string, time.Duration) {}
func (NoopDeliveryHooks) OnError(context.Context, string, string, int, error)   {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	matchHooks    MatchHooks    = NoopMatchHooks{}
	deliveryHooks DeliveryHooks = NoopDeliveryHooks{}
	hooksMu       sync.RWMutex
)

// SetMatchHooks registers custom match hooks.
// This should be called once at application startup before any draw.
func SetMatchHooks(h MatchHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		matchHooks = h
	}
}

// SetDeliveryHooks registers custom delivery hooks.
// This should be called once at application startup before any delivery.
func SetDeliveryHooks(h DeliveryHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		deliveryHooks = h
	}
}

// Match returns the registered match hooks.
func Match() MatchHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return matchHooks
}

// Delivery returns the registered delivery hooks.
func Delivery() DeliveryHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return deliveryHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	matchHooks = NoopMatchHooks{}
	deliveryHooks = NoopDeliveryHooks{}
}
