package ratelimit

import (
	"context"
	"sync"
	"time"
)

// DefaultMinInterval is the spacing enforced between two calls to one source.
const DefaultMinInterval = time.Second

// Clock abstracts time so waits can be driven by tests.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// RealClock returns the wall clock.
func RealClock() Clock { return realClock{} }

type slot struct {
	mu   sync.Mutex
	last time.Time
	used bool
}

// IntervalLimiter enforces a minimum interval between calls per source id.
// Callers for the same source queue on the source's slot, so no two calls
// to one source can land inside the same interval. Sources never block
// each other.
type IntervalLimiter struct {
	mu       sync.Mutex
	sources  map[string]*slot
	interval time.Duration
	clock    Clock
}

// IntervalOption configures IntervalLimiter.
type IntervalOption func(*IntervalLimiter)

// WithClock injects a clock.
func WithClock(c Clock) IntervalOption {
	return func(l *IntervalLimiter) { l.clock = c }
}

// NewInterval creates a limiter. A non-positive interval falls back to DefaultMinInterval.
func NewInterval(interval time.Duration, opts ...IntervalOption) *IntervalLimiter {
	if interval <= 0 {
		interval = DefaultMinInterval
	}
	l := &IntervalLimiter{
		sources:  make(map[string]*slot),
		interval: interval,
		clock:    RealClock(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Interval returns the configured minimum interval.
func (l *IntervalLimiter) Interval() time.Duration { return l.interval }

// Acquire blocks until the source may be called again and records the call.
// If ctx ends while waiting, ctx.Err() is returned and nothing is recorded.
func (l *IntervalLimiter) Acquire(ctx context.Context, source string) error {
	s := l.slot(source)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if s.used {
		if wait := l.interval - l.clock.Now().Sub(s.last); wait > 0 {
			if err := l.clock.Sleep(ctx, wait); err != nil {
				return err
			}
		}
	}
	s.last = l.clock.Now()
	s.used = true
	return nil
}

// Sources returns the number of distinct sources seen so far.
func (l *IntervalLimiter) Sources() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.sources)
}

func (l *IntervalLimiter) slot(source string) *slot {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.sources[source]
	if !ok {
		s = &slot{}
		l.sources[source] = s
	}
	return s
}
