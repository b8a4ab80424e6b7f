package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"TradeSignal/internal/domain/models"
	"TradeSignal/internal/domain/repository"
	"TradeSignal/internal/service/cache"
	applogger "TradeSignal/pkg/logger"
)

// SignalGenerator is the cascade seen from callers.
type SignalGenerator interface {
	Generate(ctx context.Context, req models.SignalRequest) (*models.Signal, error)
}

// SignalUseCase wraps the cascade with a short response cache, persistence
// and publishing. Persistence and publishing are best effort.
type SignalUseCase struct {
	cascade   SignalGenerator
	store     repository.SignalStore
	publisher repository.SignalPublisher
	cache     cache.BytesCache
	cacheTTL  time.Duration
	metrics   repository.Metrics
	logger    *applogger.Logger
}

func NewSignalUseCase(
	cascade SignalGenerator,
	store repository.SignalStore,
	publisher repository.SignalPublisher,
	c cache.BytesCache,
	cacheTTL time.Duration,
	m repository.Metrics,
	l *applogger.Logger,
) *SignalUseCase {
	return &SignalUseCase{
		cascade:   cascade,
		store:     store,
		publisher: publisher,
		cache:     c,
		cacheTTL:  cacheTTL,
		metrics:   m,
		logger:    l,
	}
}

// Generate returns a signal for req. Cached signals are returned as is and
// not re-published.
func (u *SignalUseCase) Generate(ctx context.Context, req models.SignalRequest) (*models.Signal, error) {
	req = normalizeRequest(req)
	key := fmt.Sprintf("signal:%s:%s:%s", req.Symbol, req.Timeframe, req.Period)
	start := time.Now()

	sig, hit, err := cache.ReadThrough(ctx, u.cache, key, u.cacheTTL, func(ctx context.Context) (*models.Signal, error) {
		return u.cascade.Generate(ctx, req)
	})
	u.metrics.RecordLatency("generate_signal", time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}
	if hit {
		return sig, nil
	}

	u.metrics.RecordLastPrice(sig.Symbol, sig.Price)
	u.persist(ctx, sig)
	return sig, nil
}

// normalizeRequest fills defaults so equivalent requests share a cache key.
func normalizeRequest(req models.SignalRequest) models.SignalRequest {
	req.Symbol = strings.ToUpper(strings.TrimSpace(req.Symbol))
	req.Timeframe = string(repository.NormalizeTimeframe(req.Timeframe))
	req.Period = strings.TrimSpace(req.Period)
	if req.Period == "" {
		req.Period = DefaultPeriod
	}
	return req
}

func (u *SignalUseCase) persist(ctx context.Context, sig *models.Signal) {
	if err := u.store.Save(ctx, sig); err != nil {
		u.metrics.RecordError("store")
		u.logger.Error("failed to store signal",
			applogger.String("symbol", sig.Symbol),
			applogger.String("id", sig.ID),
			applogger.Error(err),
		)
	}
	if err := u.publisher.Publish(ctx, sig); err != nil {
		u.metrics.RecordError("publish")
		u.logger.Error("failed to publish signal",
			applogger.String("symbol", sig.Symbol),
			applogger.String("id", sig.ID),
			applogger.Error(err),
		)
	}
}

// History returns the most recent stored signals, newest first.
func (u *SignalUseCase) History(ctx context.Context, symbol string, limit int) ([]models.Signal, error) {
	return u.store.Recent(ctx, strings.ToUpper(strings.TrimSpace(symbol)), limit)
}

// Health reports the signal store status.
func (u *SignalUseCase) Health(ctx context.Context) error {
	return u.store.Health(ctx)
}
