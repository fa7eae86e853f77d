package ratelimit

import (
	"testing"
	"time"
)

func TestAllowEnforcesWindowLimit(t *testing.T) {
	l := NewLimiter()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		res := l.Allow("host-a", 3, time.Minute, now.Add(time.Duration(i)*time.Second))
		if !res.Allowed {
			t.Fatalf("request %d unexpectedly denied", i)
		}
		if res.Remaining != 3-(i+1) {
			t.Fatalf("request %d remaining = %d", i, res.Remaining)
		}
	}

	denied := l.Allow("host-a", 3, time.Minute, now.Add(3*time.Second))
	if denied.Allowed {
		t.Fatalf("fourth request within window allowed")
	}
	if want := now.Add(time.Minute); !denied.ResetAt.Equal(want) {
		t.Fatalf("reset at = %v, want %v", denied.ResetAt, want)
	}

	// Keys are independent.
	if res := l.Allow("host-b", 3, time.Minute, now.Add(3*time.Second)); !res.Allowed {
		t.Fatalf("other key denied")
	}

	// The window slides: once the oldest entries expire, requests pass.
	later := l.Allow("host-a", 3, time.Minute, now.Add(2*time.Minute))
	if !later.Allowed {
		t.Fatalf("request after window slide denied")
	}
}

func TestZeroLimitDisablesCheck(t *testing.T) {
	l := NewLimiter()
	now := time.Now().UTC()
	for i := 0; i < 100; i++ {
		if res := l.Allow("k", 0, time.Minute, now); !res.Allowed {
			t.Fatalf("zero limit denied request %d", i)
		}
	}
}

func TestIdleBucketsArePruned(t *testing.T) {
	l := NewLimiter()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	l.Allow("old-host", 10, time.Minute, now)
	l.Allow("fresh-host", 10, time.Minute, now.Add(2*time.Minute))

	if got := l.Keys(); got != 1 {
		t.Fatalf("keys after prune = %d, want 1", got)
	}
}
