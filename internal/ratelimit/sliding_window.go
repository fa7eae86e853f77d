// Package ratelimit implements a sliding-window request limiter keyed by
// arbitrary string. The introspection API keys on client host, so buckets
// for hosts that went quiet are pruned as a side effect of Allow.
package ratelimit

import (
	"sync"
	"time"
)

type Limiter struct {
	mu      sync.Mutex
	buckets map[string][]time.Time
}

func NewLimiter() *Limiter {
	return &Limiter{
		buckets: map[string][]time.Time{},
	}
}

type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Allow records one request under key if fewer than limit requests were
// seen within the trailing window. A non-positive limit disables the
// check entirely.
func (l *Limiter) Allow(key string, limit int, window time.Duration, now time.Time) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	if limit <= 0 {
		return Result{Allowed: true}
	}

	cutoff := now.Add(-window)
	history := l.buckets[key][:0]
	for _, ts := range l.buckets[key] {
		if ts.After(cutoff) {
			history = append(history, ts)
		}
	}

	result := Result{Limit: limit}
	if len(history) >= limit {
		result.ResetAt = history[0].Add(window)
		l.buckets[key] = history
		return result
	}

	history = append(history, now)
	l.buckets[key] = history
	result.Allowed = true
	result.Remaining = limit - len(history)
	result.ResetAt = history[0].Add(window)

	l.prune(cutoff)
	return result
}

// prune drops buckets whose newest entry predates the cutoff. Callers
// hold the lock.
func (l *Limiter) prune(cutoff time.Time) {
	for key, history := range l.buckets {
		if len(history) == 0 || !history[len(history)-1].After(cutoff) {
			delete(l.buckets, key)
		}
	}
}

// Keys reports how many distinct keys currently hold a bucket.
func (l *Limiter) Keys() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
