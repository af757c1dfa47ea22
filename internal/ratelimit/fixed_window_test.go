package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestLimiter(t *testing.T, limit int, window time.Duration) (*FixedWindowLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	limiter, err := NewFixedWindowLimiter(client, "test:ratelimit", limit, window)
	if err != nil {
		t.Fatalf("new limiter: %v", err)
	}
	return limiter, mr
}

func TestAllowWithinQuota(t *testing.T) {
	limiter, _ := newTestLimiter(t, 3, time.Minute)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if !limiter.Allow(ctx, "1.2.3.4") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if limiter.Allow(ctx, "1.2.3.4") {
		t.Fatalf("request over quota must be rejected")
	}
	// Another key has its own window.
	if !limiter.Allow(ctx, "5.6.7.8") {
		t.Fatalf("distinct key must not share quota")
	}
}

func TestAllowAfterWindowReset(t *testing.T) {
	limiter, mr := newTestLimiter(t, 1, 100*time.Millisecond)
	ctx := context.Background()
	if !limiter.Allow(ctx, "client") {
		t.Fatalf("first request should pass")
	}
	if limiter.Allow(ctx, "client") {
		t.Fatalf("second request in window must be rejected")
	}
	mr.FastForward(150 * time.Millisecond)
	time.Sleep(110 * time.Millisecond) // next window slot
	if !limiter.Allow(ctx, "client") {
		t.Fatalf("request after window reset should pass")
	}
}

func TestAllowFailsClosedWhenRedisDown(t *testing.T) {
	limiter, mr := newTestLimiter(t, 10, time.Minute)
	mr.Close()
	if limiter.Allow(context.Background(), "client") {
		t.Fatalf("limiter must fail closed when redis is unreachable")
	}
}

func TestNewFixedWindowLimiterValidation(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	defer client.Close()
	if _, err := NewFixedWindowLimiter(nil, "", 1, time.Minute); err == nil {
		t.Fatalf("nil client must be rejected")
	}
	if _, err := NewFixedWindowLimiter(client, "", 0, time.Minute); err == nil {
		t.Fatalf("zero limit must be rejected")
	}
	if _, err := NewFixedWindowLimiter(client, "", 1, 0); err == nil {
		t.Fatalf("zero window must be rejected")
	}
}
