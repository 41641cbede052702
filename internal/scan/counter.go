// Package scan tracks the lifetime count of successful identifications
// (§4.8): a best-effort, at-least-once counter bumped whenever an
// identification resolves to a card, independent of match confidence.
package scan

import (
	"context"

	"k8s.io/klog/v2"
)

// Store is the subset of catalog.Store the counter needs.
type Store interface {
	IncrementTotalScans(ctx context.Context) error
	ReadTotalScans(ctx context.Context) (uint64, error)
}

// Counter increments the persistent scan counter and reads it back.
// Failures are logged, never returned to the caller: a counter write that
// fails must not fail the identification response it rides along with.
type Counter struct {
	store Store
}

// NewCounter wraps store for counter bookkeeping.
func NewCounter(store Store) *Counter {
	return &Counter{store: store}
}

// RecordMatch increments the counter unconditionally; callers invoke this
// exactly when an identification result carries a non-nil card, regardless
// of confidence (§9a). Errors are logged and swallowed.
func (c *Counter) RecordMatch(ctx context.Context) {
	if err := c.store.IncrementTotalScans(ctx); err != nil {
		klog.Warningf("scan: failed to increment counter: %s", err)
	}
}

// Total returns the current counter value for the stats endpoint. A read
// failure returns 0 alongside the error so callers can decide whether to
// surface a degraded response.
func (c *Counter) Total(ctx context.Context) (uint64, error) {
	return c.store.ReadTotalScans(ctx)
}
