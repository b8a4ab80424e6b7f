package ratelimit

import (
	"testing"
	"time"
)

func TestLimiterAllowRefills(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := New()
	l.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		if !l.Allow("10.0.0.1", 2, 1) {
			t.Fatalf("call %d should be allowed", i)
		}
	}
	if l.Allow("10.0.0.1", 2, 1) {
		t.Fatalf("bucket should be empty")
	}
	if !l.Allow("10.0.0.2", 2, 1) {
		t.Fatalf("other key should have its own bucket")
	}

	now = now.Add(time.Second)
	if !l.Allow("10.0.0.1", 2, 1) {
		t.Fatalf("expected one token after refill")
	}
}
