package repository

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"TradeSignal/internal/domain/models"
	domrepo "TradeSignal/internal/domain/repository"
)

const (
	bufferQueue       = "publish_buffer"
	defaultBufferSize = 1000
	minBackoff        = 50 * time.Millisecond
	maxBackoff        = 2 * time.Second
)

// BufferedPublisher sits between the use case and a slow downstream (Kafka).
// A failed publish is queued and retried in the background with exponential
// backoff; when the buffer is full the signal is dropped.
type BufferedPublisher struct {
	next    domrepo.SignalPublisher
	metrics domrepo.Metrics
	bufCh   chan *models.Signal
	stopCh  chan struct{}
	doneCh  chan struct{}
	once    sync.Once
	sleep   func(context.Context, time.Duration)
}

type BufferOption func(*BufferedPublisher)

// WithBufferSize sets how many failed signals are kept for retry.
func WithBufferSize(n int) BufferOption {
	return func(p *BufferedPublisher) {
		if n > 0 {
			p.bufCh = make(chan *models.Signal, n)
		}
	}
}

// NewBufferedPublisher starts the background flusher.
func NewBufferedPublisher(next domrepo.SignalPublisher, m domrepo.Metrics, opts ...BufferOption) *BufferedPublisher {
	p := &BufferedPublisher{
		next:    next,
		metrics: m,
		bufCh:   make(chan *models.Signal, defaultBufferSize),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
		sleep:   sleepCtx,
	}
	for _, opt := range opts {
		opt(p)
	}
	go p.flush()
	return p
}

// Publish forwards s, buffering it for retry on failure. The returned error
// reports the downstream failure even when the signal was queued.
func (p *BufferedPublisher) Publish(ctx context.Context, s *models.Signal) error {
	if err := validateSignal(s); err != nil {
		p.metrics.RecordError("publish_validate")
		return err
	}
	if err := p.next.Publish(ctx, s); err != nil {
		select {
		case p.bufCh <- s:
			p.metrics.RecordQueueDepth(bufferQueue, len(p.bufCh))
		default:
			p.metrics.RecordError("publish_buffer_full")
		}
		return fmt.Errorf("publish downstream: %w", err)
	}
	return nil
}

// Pending returns the number of signals waiting for retry.
func (p *BufferedPublisher) Pending() int { return len(p.bufCh) }

// Close stops the flusher and closes the downstream. Buffered signals are lost.
func (p *BufferedPublisher) Close() error {
	p.once.Do(func() { close(p.stopCh) })
	<-p.doneCh
	return p.next.Close()
}

func (p *BufferedPublisher) flush() {
	defer close(p.doneCh)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-p.stopCh
		cancel()
	}()

	backoff := minBackoff
	for {
		select {
		case <-p.stopCh:
			return
		case s := <-p.bufCh:
			p.metrics.RecordQueueDepth(bufferQueue, len(p.bufCh))
			if err := p.next.Publish(ctx, s); err != nil {
				p.metrics.RecordError("publish_flush")
				backoff = time.Duration(math.Min(float64(backoff*2), float64(maxBackoff)))
				p.sleep(ctx, backoff)
				select {
				case p.bufCh <- s:
					p.metrics.RecordQueueDepth(bufferQueue, len(p.bufCh))
				default:
					p.metrics.RecordError("publish_buffer_drop")
				}
				continue
			}
			backoff = minBackoff
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func validateSignal(s *models.Signal) error {
	if s == nil {
		return fmt.Errorf("signal nil")
	}
	if s.Symbol == "" {
		return fmt.Errorf("symbol empty")
	}
	if _, ok := models.ParseSignalKind(string(s.Kind)); !ok {
		return fmt.Errorf("invalid signal kind %q", s.Kind)
	}
	if math.IsNaN(s.Price) || math.IsInf(s.Price, 0) || s.Price < 0 {
		return fmt.Errorf("invalid price %v", s.Price)
	}
	return nil
}
