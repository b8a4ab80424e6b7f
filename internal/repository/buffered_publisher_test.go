package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"TradeSignal/internal/domain/models"
	"TradeSignal/pkg/metrics"
)

// flakyPublisher fails the first n publishes.
type flakyPublisher struct {
	mu       sync.Mutex
	failures int
	got      []string
	closed   bool
}

func (f *flakyPublisher) Publish(_ context.Context, s *models.Signal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures > 0 {
		f.failures--
		return errors.New("broker unavailable")
	}
	f.got = append(f.got, s.Symbol)
	return nil
}

func (f *flakyPublisher) Close() error {
	f.closed = true
	return nil
}

func (f *flakyPublisher) delivered() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.got)
}

func noSleep(context.Context, time.Duration) {}

func TestBufferedPublisherRetries(t *testing.T) {
	next := &flakyPublisher{failures: 2}
	p := NewBufferedPublisher(next, metrics.Nop{})
	p.sleep = noSleep

	err := p.Publish(context.Background(), &models.Signal{Symbol: "BTC-USD", Kind: models.SignalBuy, Price: 1})
	if err == nil {
		t.Fatalf("first publish should report the downstream error")
	}

	deadline := time.Now().Add(2 * time.Second)
	for next.delivered() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("buffered signal was never delivered")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if err := p.Close(); err != nil || !next.closed {
		t.Fatalf("close should reach downstream")
	}
}

func TestBufferedPublisherValidates(t *testing.T) {
	next := &flakyPublisher{}
	p := NewBufferedPublisher(next, metrics.Nop{})
	defer p.Close()

	bad := []*models.Signal{
		nil,
		{Kind: models.SignalBuy},
		{Symbol: "X", Kind: "MAYBE"},
		{Symbol: "X", Kind: models.SignalHold, Price: -1},
	}
	for i, s := range bad {
		if err := p.Publish(context.Background(), s); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
	if next.delivered() != 0 || p.Pending() != 0 {
		t.Fatalf("invalid signals must not reach downstream or buffer")
	}
}

func TestBufferedPublisherDropsWhenFull(t *testing.T) {
	next := &flakyPublisher{failures: 1 << 30}
	p := NewBufferedPublisher(next, metrics.Nop{}, WithBufferSize(1))
	defer p.Close()

	for i := 0; i < 5; i++ {
		_ = p.Publish(context.Background(), &models.Signal{Symbol: "X", Kind: models.SignalSell, Price: 1})
	}
	if p.Pending() > 1 {
		t.Fatalf("buffer exceeded capacity: %d", p.Pending())
	}
}

type depthRecorder struct {
	metrics.Nop
	mu      sync.Mutex
	depths  map[string][]int
	latency []string
}

func (r *depthRecorder) RecordQueueDepth(queue string, depth int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.depths == nil {
		r.depths = map[string][]int{}
	}
	r.depths[queue] = append(r.depths[queue], depth)
}

func (r *depthRecorder) RecordLatency(op string, _ float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.latency = append(r.latency, op)
}

func (r *depthRecorder) snapshot() ([]int, []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.depths[bufferQueue]...), append([]string(nil), r.latency...)
}

func TestBufferedPublisherReportsDepthAsGauge(t *testing.T) {
	next := &flakyPublisher{failures: 1 << 30}
	rec := &depthRecorder{}
	p := NewBufferedPublisher(next, rec)
	p.sleep = func(ctx context.Context, _ time.Duration) { <-ctx.Done() }

	_ = p.Publish(context.Background(), &models.Signal{Symbol: "ETH-USD", Kind: models.SignalBuy, Price: 2})

	deadline := time.Now().Add(2 * time.Second)
	for {
		depths, _ := rec.snapshot()
		// one sample on enqueue, one when the flusher takes the signal
		if len(depths) >= 2 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected enqueue and dequeue depth samples, got %v", depths)
		}
		time.Sleep(5 * time.Millisecond)
	}
	_ = p.Close()

	depths, ops := rec.snapshot()
	for _, d := range depths {
		if d < 0 || d > 1 {
			t.Fatalf("depth out of range: %v", depths)
		}
	}
	if len(ops) != 0 {
		t.Fatalf("buffer depth must not land in the latency histogram: %v", ops)
	}
}
