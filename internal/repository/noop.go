package repository

import (
	"context"
	"errors"
	"sync"

	"TradeSignal/internal/domain/models"
	domrepo "TradeSignal/internal/domain/repository"
)

// NoopPublisher discards signals.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, *models.Signal) error { return nil }
func (NoopPublisher) Close() error                                  { return nil }

// MemoryStore keeps the most recent signals in process. It backs history
// when ClickHouse is disabled.
type MemoryStore struct {
	mu   sync.RWMutex
	size int
	sigs []models.Signal
}

func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = maxRecentLimit
	}
	return &MemoryStore{size: capacity}
}

func (m *MemoryStore) Save(_ context.Context, s *models.Signal) error {
	if s == nil {
		return errors.New("nil signal")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sigs = append(m.sigs, *s)
	if over := len(m.sigs) - m.size; over > 0 {
		m.sigs = append(m.sigs[:0:0], m.sigs[over:]...)
	}
	return nil
}

// Recent returns newest first. An empty symbol matches all.
func (m *MemoryStore) Recent(_ context.Context, symbol string, limit int) ([]models.Signal, error) {
	limit = ClampLimit(limit)
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Signal, 0, limit)
	for i := len(m.sigs) - 1; i >= 0 && len(out) < limit; i-- {
		if symbol == "" || m.sigs[i].Symbol == symbol {
			out = append(out, m.sigs[i])
		}
	}
	return out, nil
}

func (m *MemoryStore) Health(context.Context) error { return nil }
func (m *MemoryStore) Close() error                 { return nil }

// FanoutPublisher publishes to every target and joins their errors.
type FanoutPublisher struct {
	targets []domrepo.SignalPublisher
}

func NewFanoutPublisher(targets ...domrepo.SignalPublisher) *FanoutPublisher {
	out := make([]domrepo.SignalPublisher, 0, len(targets))
	for _, t := range targets {
		if t != nil {
			out = append(out, t)
		}
	}
	return &FanoutPublisher{targets: out}
}

func (f *FanoutPublisher) Publish(ctx context.Context, s *models.Signal) error {
	var errs []error
	for _, t := range f.targets {
		if err := t.Publish(ctx, s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f *FanoutPublisher) Close() error {
	var errs []error
	for _, t := range f.targets {
		if err := t.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var (
	_ domrepo.SignalStore     = (*MemoryStore)(nil)
	_ domrepo.SignalStore     = (*CHSignalStore)(nil)
	_ domrepo.SignalPublisher = NoopPublisher{}
	_ domrepo.SignalPublisher = (*FanoutPublisher)(nil)
	_ domrepo.SignalPublisher = (*KafkaSignalPublisher)(nil)
)
