package ratelimit

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	red "github.com/redis/go-redis/v9"

	"github.com/shivamraaj1812-hue/kana-dojo-sub000/internal/core/domain"
)

func newTestRedis(t *testing.T) (*red.Client, *miniredis.Miniredis) {
	t.Helper()

	server, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := red.NewClient(&red.Options{Addr: server.Addr()})

	t.Cleanup(func() {
		_ = client.Close()
		server.Close()
	})

	return client, server
}

func TestRedisLimiterFixedWindow(t *testing.T) {
	client, _ := newTestRedis(t)

	policy := domain.RateLimitPolicy{MaxRequests: 2, Window: time.Second}
	global := domain.GlobalRateLimitPolicy{MaxRequests: 1000, Window: time.Minute}

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := base
	limiter := NewRedisLimiter(client, "sync", policy, global).WithClock(func() time.Time { return now })
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		result, err := limiter.Check(ctx, "192.0.2.1")
		if err != nil {
			t.Fatalf("check %d returned error: %v", i, err)
		}
		if !result.Allowed {
			t.Fatalf("check %d: expected allowed", i)
		}
		if result.Remaining != 2-(i+1) {
			t.Fatalf("check %d: expected remaining %d, got %d", i, 2-(i+1), result.Remaining)
		}
	}

	result, err := limiter.Check(ctx, "192.0.2.1")
	if err != nil {
		t.Fatalf("third check returned error: %v", err)
	}
	if result.Allowed {
		t.Fatalf("expected third check in the window to be denied")
	}
	if result.Reason != domain.DenyReasonRateLimit {
		t.Fatalf("expected reason rate_limit, got %q", result.Reason)
	}
	if want := base.Add(time.Second); !result.ResetAt.Equal(want) {
		t.Fatalf("expected reset at %v, got %v", want, result.ResetAt)
	}

	// A new window id means a fresh counter.
	now = base.Add(time.Second)
	result, err = limiter.Check(ctx, "192.0.2.1")
	if err != nil {
		t.Fatalf("next-window check returned error: %v", err)
	}
	if !result.Allowed {
		t.Fatalf("expected next window to admit the identity again")
	}
}

// Fixed windows deliberately admit up to twice the limit across a boundary.
// The cheaper counter is the accepted trade against the exact sliding window,
// so this behavior is pinned rather than "fixed".
func TestRedisLimiterAllowsBoundaryBurst(t *testing.T) {
	client, _ := newTestRedis(t)

	policy := domain.RateLimitPolicy{MaxRequests: 2, Window: time.Second}
	global := domain.GlobalRateLimitPolicy{MaxRequests: 1000, Window: time.Minute}

	now := time.Date(2025, 6, 1, 12, 0, 0, 900_000_000, time.UTC)
	limiter := NewRedisLimiter(client, "sync", policy, global).WithClock(func() time.Time { return now })
	ctx := context.Background()

	allowed := 0
	for i := 0; i < 2; i++ {
		result, err := limiter.Check(ctx, "192.0.2.1")
		if err != nil {
			t.Fatalf("check returned error: %v", err)
		}
		if result.Allowed {
			allowed++
		}
	}

	now = now.Add(200 * time.Millisecond)
	for i := 0; i < 2; i++ {
		result, err := limiter.Check(ctx, "192.0.2.1")
		if err != nil {
			t.Fatalf("check returned error: %v", err)
		}
		if result.Allowed {
			allowed++
		}
	}

	if allowed != 4 {
		t.Fatalf("expected 4 requests admitted across the boundary, got %d", allowed)
	}
}

func TestRedisLimiterGlobalBeforeIdentity(t *testing.T) {
	client, _ := newTestRedis(t)

	policy := domain.RateLimitPolicy{MaxRequests: 10, Window: time.Minute}
	global := domain.GlobalRateLimitPolicy{MaxRequests: 1, Window: time.Minute}

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewRedisLimiter(client, "sync", policy, global).WithClock(func() time.Time { return now })
	ctx := context.Background()

	result, err := limiter.Check(ctx, "192.0.2.1")
	if err != nil {
		t.Fatalf("first check returned error: %v", err)
	}
	if !result.Allowed {
		t.Fatalf("expected first check to be allowed")
	}

	// Different identity, still over the shared global counter.
	result, err = limiter.Check(ctx, "192.0.2.2")
	if err != nil {
		t.Fatalf("second check returned error: %v", err)
	}
	if result.Allowed {
		t.Fatalf("expected global backstop to deny the second identity")
	}
	if result.Reason != domain.DenyReasonGlobal {
		t.Fatalf("expected reason global_limit, got %q", result.Reason)
	}
}

func TestRedisLimiterDailyQuota(t *testing.T) {
	client, _ := newTestRedis(t)

	policy := domain.RateLimitPolicy{MaxRequests: 10, Window: time.Second, DailyLimit: 1}
	global := domain.GlobalRateLimitPolicy{MaxRequests: 1000, Window: time.Minute}

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := base
	limiter := NewRedisLimiter(client, "sync", policy, global).WithClock(func() time.Time { return now })
	ctx := context.Background()

	result, err := limiter.Check(ctx, "192.0.2.1")
	if err != nil {
		t.Fatalf("first check returned error: %v", err)
	}
	if !result.Allowed {
		t.Fatalf("expected first check to be allowed")
	}

	// A fresh request window does not help: the day counter persists.
	now = base.Add(2 * time.Second)
	result, err = limiter.Check(ctx, "192.0.2.1")
	if err != nil {
		t.Fatalf("second check returned error: %v", err)
	}
	if result.Allowed {
		t.Fatalf("expected the daily quota to deny the second check")
	}
	if result.Reason != domain.DenyReasonDailyQuota {
		t.Fatalf("expected reason daily_quota, got %q", result.Reason)
	}
	if want := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC); !result.ResetAt.Equal(want) {
		t.Fatalf("expected reset at next UTC midnight %v, got %v", want, result.ResetAt)
	}
}

func TestRedisLimiterSurfacesStoreErrors(t *testing.T) {
	client, server := newTestRedis(t)

	policy := domain.RateLimitPolicy{MaxRequests: 10, Window: time.Minute}
	global := domain.GlobalRateLimitPolicy{MaxRequests: 100, Window: time.Minute}
	limiter := NewRedisLimiter(client, "sync", policy, global)

	server.Close()

	if _, err := limiter.Check(context.Background(), "192.0.2.1"); err == nil {
		t.Fatalf("expected an error when the store is unreachable")
	}
}
