package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestTTLCacheExpiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewTTLCache()
	c.now = func() time.Time { return now }
	ctx := context.Background()

	_ = c.SetBytes(ctx, "k", []byte("v"), time.Minute)
	if b, ok, _ := c.GetBytes(ctx, "k"); !ok || string(b) != "v" {
		t.Fatalf("expected hit")
	}
	now = now.Add(2 * time.Minute)
	if _, ok, _ := c.GetBytes(ctx, "k"); ok {
		t.Fatalf("expected expired entry to miss")
	}
	if c.Len() != 0 {
		t.Fatalf("expired entry should be evicted on read")
	}
}

func TestReadThrough(t *testing.T) {
	c := NewTTLCache()
	ctx := context.Background()
	calls := 0
	load := func(context.Context) ([]int, error) {
		calls++
		return []int{1, 2, 3}, nil
	}

	v, hit, err := ReadThrough(ctx, c, "series", time.Minute, load)
	if err != nil || hit || len(v) != 3 {
		t.Fatalf("first call: v=%v hit=%v err=%v", v, hit, err)
	}
	v, hit, err = ReadThrough(ctx, c, "series", time.Minute, load)
	if err != nil || !hit || len(v) != 3 {
		t.Fatalf("second call: v=%v hit=%v err=%v", v, hit, err)
	}
	if calls != 1 {
		t.Fatalf("loader called %d times", calls)
	}
}

func TestReadThroughErrorNotCached(t *testing.T) {
	c := NewTTLCache()
	boom := errors.New("boom")
	_, _, err := ReadThrough(context.Background(), c, "k", time.Minute, func(context.Context) (string, error) {
		return "", boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected loader error, got %v", err)
	}
	if c.Len() != 0 {
		t.Fatalf("failed load must not be cached")
	}
}

func TestReadThroughNilCache(t *testing.T) {
	v, hit, err := ReadThrough(context.Background(), nil, "k", time.Minute, func(context.Context) (string, error) {
		return "x", nil
	})
	if err != nil || hit || v != "x" {
		t.Fatalf("unexpected result %q hit=%v err=%v", v, hit, err)
	}
}
