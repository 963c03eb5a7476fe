package middleware

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisLimiterForTest(t *testing.T) (*miniredis.Miniredis, *RedisFixedWindowLimiter) {
	t.Helper()
	m := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return m, NewRedisFixedWindowLimiter(client, "rl_test")
}

func TestRedisFixedWindowLimiterAllowThenDeny(t *testing.T) {
	_, limiter := newRedisLimiterForTest(t)
	ctx := context.Background()

	allowed, _, err := limiter.Allow(ctx, "", 1, time.Second)
	if err != nil {
		t.Fatalf("allow first request: %v", err)
	}
	if !allowed {
		t.Fatal("expected first request to be allowed")
	}

	allowed, retryAfter, err := limiter.Allow(ctx, "", 1, time.Second)
	if err != nil {
		t.Fatalf("allow second request: %v", err)
	}
	if allowed {
		t.Fatal("expected second request denied")
	}
	if retryAfter <= 0 || retryAfter > time.Second {
		t.Fatalf("expected retry-after within the window, got %v", retryAfter)
	}
}

func TestRedisFixedWindowLimiterWindowExpires(t *testing.T) {
	m, limiter := newRedisLimiterForTest(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, _, err := limiter.Allow(ctx, "auth:10.0.0.1", 1, time.Minute); err != nil {
			t.Fatalf("allow: %v", err)
		}
	}
	if !m.Exists("rl_test:auth:10.0.0.1") {
		t.Fatal("expected prefixed counter key")
	}

	m.FastForward(time.Minute + time.Second)
	allowed, _, err := limiter.Allow(ctx, "auth:10.0.0.1", 1, time.Minute)
	if err != nil {
		t.Fatalf("allow after window: %v", err)
	}
	if !allowed {
		t.Fatal("expected a fresh window after expiry")
	}
}

func TestRedisFixedWindowLimiterBackendAndNilClientErrors(t *testing.T) {
	limiter := NewRedisFixedWindowLimiter(nil, "")
	if _, _, err := limiter.Allow(context.Background(), "k", 1, time.Second); err == nil {
		t.Fatal("expected nil client error")
	}

	badClient := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 20 * time.Millisecond, ReadTimeout: 20 * time.Millisecond, WriteTimeout: 20 * time.Millisecond, MaxRetries: -1})
	t.Cleanup(func() { _ = badClient.Close() })
	limiter = NewRedisFixedWindowLimiter(badClient, "")
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	if _, _, err := limiter.Allow(ctx, "k", 1, time.Second); err == nil {
		t.Fatal("expected backend error")
	}
}

func TestParseRedisInt64Branches(t *testing.T) {
	if v, err := parseRedisInt64(int64(4)); err != nil || v != 4 {
		t.Fatalf("int64 parse mismatch v=%d err=%v", v, err)
	}
	if v, err := parseRedisInt64(int(3)); err != nil || v != 3 {
		t.Fatalf("int parse mismatch v=%d err=%v", v, err)
	}
	if _, err := parseRedisInt64(uint64(math.MaxUint64)); err == nil {
		t.Fatal("expected overflow error for uint64")
	}
	if _, err := parseRedisInt64("1"); err == nil {
		t.Fatal("expected string type error")
	}
	if _, err := parseRedisInt64(errors.New("x")); err == nil {
		t.Fatal("expected unexpected type error")
	}
}
