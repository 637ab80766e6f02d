// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediagateway/gateway

// Package ratelimit enforces per-endpoint x per-client quotas using a
// sliding-window counter per key, per spec section 5: sub-second precision,
// window keys expired at 2x window length to tolerate boundary effects.
package ratelimit

import (
	"sync"
	"time"

	"github.com/mediagateway/gateway/internal/cache"
	"github.com/mediagateway/gateway/internal/gwerrors"
)

// Key identifies one rate-limit bucket: an operation name (the "endpoint")
// crossed with a client identity (user or device ID).
type Key struct {
	Op     string
	Client string
}

// entry pairs a counter with the last time it was touched, so the janitor
// can evict keys that have been idle for 2x the window.
type entry struct {
	counter *cache.SlidingWindowCounter
	touched time.Time
}

// Limiter enforces a fixed quota per Key using one SlidingWindowCounter per
// key, lazily created on first use. Safe for concurrent use.
type Limiter struct {
	mu         sync.Mutex
	entries    map[Key]*entry
	window     time.Duration
	numBuckets int
	limit      int64

	stopSweep chan struct{}
	sweepOnce sync.Once
}

// Config configures a Limiter.
type Config struct {
	// Window is the sliding window duration, e.g. 1 minute.
	Window time.Duration

	// NumBuckets subdivides Window for the sliding counter; more buckets
	// trade memory for sub-window precision. Default 10.
	NumBuckets int

	// Limit is the maximum count allowed within Window before Allow
	// returns a RATE_LIMITED error.
	Limit int64

	// SweepInterval controls how often idle keys are evicted. Default is
	// Window itself; keys idle past 2x Window are removed on each sweep.
	SweepInterval time.Duration
}

// New constructs a Limiter and starts its background janitor goroutine.
// Call Close to stop the janitor.
func New(cfg Config) *Limiter {
	if cfg.NumBuckets <= 0 {
		cfg.NumBuckets = 10
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = cfg.Window
	}

	l := &Limiter{
		entries:    make(map[Key]*entry),
		window:     cfg.Window,
		numBuckets: cfg.NumBuckets,
		limit:      cfg.Limit,
		stopSweep:  make(chan struct{}),
	}
	go l.sweepLoop(cfg.SweepInterval)
	return l
}

// Allow increments the counter for key and returns a RATE_LIMITED
// gwerrors.Error with a RetryAfter hint if the quota for the current
// window has been exceeded. The increment happens regardless of the
// outcome, matching the teacher's fail-closed sliding-window semantics.
func (l *Limiter) Allow(key Key) error {
	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{counter: cache.NewSlidingWindowCounter(l.window, l.numBuckets)}
		l.entries[key] = e
	}
	e.touched = time.Now()
	l.mu.Unlock()

	e.counter.IncrementOne()
	if e.counter.Count() > l.limit {
		return gwerrors.RateLimitedAfter("ratelimit.Limiter.Allow", l.window)
	}
	return nil
}

// Remaining reports how many requests key may still make in the current
// window, never negative.
func (l *Limiter) Remaining(key Key) int64 {
	l.mu.Lock()
	e, ok := l.entries[key]
	l.mu.Unlock()
	if !ok {
		return l.limit
	}
	remaining := l.limit - e.counter.Count()
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Close stops the background janitor. Safe to call multiple times.
func (l *Limiter) Close() {
	l.sweepOnce.Do(func() { close(l.stopSweep) })
}

func (l *Limiter) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-l.stopSweep:
			return
		case <-ticker.C:
			l.sweep()
		}
	}
}

// sweep evicts keys idle for longer than 2x the window, per spec's
// boundary-tolerant expiry policy.
func (l *Limiter) sweep() {
	cutoff := time.Now().Add(-2 * l.window)
	l.mu.Lock()
	defer l.mu.Unlock()
	for k, e := range l.entries {
		if e.touched.Before(cutoff) {
			delete(l.entries, k)
		}
	}
}
