package service

import (
	"testing"
	"time"
)

func TestRateLimiter_AllowsUpToBurst(t *testing.T) {
	rl := NewRateLimiter(1, 3)

	for i := 0; i < 3; i++ {
		if !rl.Allow("test-key") {
			t.Fatalf("request %d should be allowed (bucket not yet empty)", i+1)
		}
	}
	if rl.Allow("test-key") {
		t.Fatal("4th request should be denied (bucket empty)")
	}
}

func TestRateLimiter_DifferentKeysAreIndependent(t *testing.T) {
	rl := NewRateLimiter(1, 1)

	if !rl.Allow("ip-a") {
		t.Fatal("ip-a first request should be allowed")
	}
	if rl.Allow("ip-a") {
		t.Fatal("ip-a second request should be denied")
	}
	if !rl.Allow("ip-b") {
		t.Fatal("ip-b first request should be allowed (independent bucket)")
	}
}

func TestRateLimiter_Refills(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, 1)
	rl.now = func() time.Time { return now }

	if !rl.Allow("k") || rl.Allow("k") {
		t.Fatal("expected one request, then a denial")
	}
	now = now.Add(time.Second)
	if !rl.Allow("k") {
		t.Fatal("expected a token after one second")
	}
}

func TestRateLimiter_ZeroRateNeverRefills(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(0, 2)
	rl.now = func() time.Time { return now }

	if !rl.Allow("k") || !rl.Allow("k") {
		t.Fatal("first two requests should be allowed")
	}
	now = now.Add(time.Hour)
	if rl.Allow("k") {
		t.Fatal("third request should be denied (no refill)")
	}
}

func TestRateLimiter_DropsIdleKeys(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, 1)
	rl.now = func() time.Time { return now }
	rl.lastCleanup = now

	rl.Allow("stale")
	now = now.Add(limiterIdleTTL + time.Minute)
	rl.Allow("fresh")

	if got := rl.Len(); got != 1 {
		t.Fatalf("expected only the fresh key to remain, got %d keys", got)
	}
}
