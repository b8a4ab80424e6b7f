package repository

import (
	"context"

	"TradeSignal/internal/domain/models"
)

// PrimaryPredictor is the external ML inference service (tier 1).
type PrimaryPredictor interface {
	Predict(ctx context.Context, symbol string, tf Timeframe, period string) (*models.Signal, error)
}

// HistoryProvider fetches an OHLCV series for the regression tier (tier 2).
type HistoryProvider interface {
	FetchSeries(ctx context.Context, symbol string, tf Timeframe) (models.PriceSeries, error)
}

// QuoteProvider fetches a single current price for the synthetic tier (tier 3).
type QuoteProvider interface {
	FetchPrice(ctx context.Context, symbol string) (float64, error)
}

// SignalStore persists generated signals.
type SignalStore interface {
	Save(ctx context.Context, s *models.Signal) error
	Recent(ctx context.Context, symbol string, limit int) ([]models.Signal, error)
	Health(ctx context.Context) error
	Close() error
}

// SignalPublisher pushes generated signals to downstream consumers.
type SignalPublisher interface {
	Publish(ctx context.Context, s *models.Signal) error
	Close() error
}

type Metrics interface {
	RecordTier(tier, outcome string)
	RecordRelayAttempt(relay, outcome string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
	RecordQueueDepth(queue string, depth int)
}
