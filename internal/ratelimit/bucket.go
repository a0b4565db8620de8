// Package ratelimit implements the process-wide per-region token bucket
// described in spec.md §4.4/§5/§9: "a single shared token bucket per
// region, accessed through a narrow interface so it can be swapped for a
// distributed implementation later without touching call sites."
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// window is one refill window of a Bucket: a fixed number of requests are
// allowed per period, replenished in full at the window boundary. A Bucket
// tracks two windows (short and long) simultaneously, matching the
// vendor's published short+long rate limits (spec.md §4.4).
type window struct {
	capacity int
	period   time.Duration
	count    int
	resetAt  time.Time
}

func (w *window) allow(now time.Time) bool {
	if now.After(w.resetAt) {
		w.count = 0
		w.resetAt = now.Add(w.period)
	}
	if w.count >= w.capacity {
		return false
	}
	w.count++
	return true
}

// Bucket guards a single region's GameAPI calls.
type Bucket struct {
	mu    sync.Mutex
	short window
	long  window
}

// NewBucket constructs a Bucket with the given short/long capacities.
func NewBucket(shortCap int, shortPeriod time.Duration, longCap int, longPeriod time.Duration) *Bucket {
	now := time.Now()
	return &Bucket{
		short: window{capacity: shortCap, period: shortPeriod, resetAt: now.Add(shortPeriod)},
		long:  window{capacity: longCap, period: longPeriod, resetAt: now.Add(longPeriod)},
	}
}

// Allow reports whether a call may proceed right now, consuming a token
// from both windows if so.
func (b *Bucket) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := time.Now()
	if !b.short.allow(now) {
		return false
	}
	if !b.long.allow(now) {
		b.short.count--
		return false
	}
	return true
}

// Wait blocks until a token is available or ctx is done, polling at a small
// fixed interval. It is deliberately simple: the GameAPI client layers its
// own 429/Retry-After handling on top.
func (b *Bucket) Wait(ctx context.Context) error {
	ticker := time.NewTicker(25 * time.Millisecond)
	defer ticker.Stop()
	if b.Allow() {
		return nil
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if b.Allow() {
				return nil
			}
		}
	}
}

// Registry is a process-wide map of region → Bucket, the narrow interface
// every worker serializes against (spec.md §5).
type Registry struct {
	mu      sync.Mutex
	buckets map[string]*Bucket
	factory func(region string) *Bucket
}

// NewRegistry constructs a Registry that lazily creates buckets via factory
// on first use per region.
func NewRegistry(factory func(region string) *Bucket) *Registry {
	return &Registry{buckets: make(map[string]*Bucket), factory: factory}
}

// For returns the Bucket for a region, creating it on first access.
func (r *Registry) For(region string) *Bucket {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.buckets[region]; ok {
		return b
	}
	b := r.factory(region)
	r.buckets[region] = b
	return b
}
