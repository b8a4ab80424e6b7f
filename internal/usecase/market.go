package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"TradeSignal/internal/domain/models"
	"TradeSignal/internal/domain/repository"
	"TradeSignal/internal/services/analysis"
	applogger "TradeSignal/pkg/logger"
)

// ErrPriceUnavailable is returned when neither the spot provider nor the
// chart history can price a symbol.
var ErrPriceUnavailable = errors.New("price unavailable")

// MarketUseCase serves the latest price and technical indicators for a symbol.
type MarketUseCase struct {
	history repository.HistoryProvider
	quotes  repository.QuoteProvider
	metrics repository.Metrics
	logger  *applogger.Logger
	now     func() time.Time
}

func NewMarketUseCase(h repository.HistoryProvider, q repository.QuoteProvider, m repository.Metrics, l *applogger.Logger) *MarketUseCase {
	if l == nil {
		l = applogger.NewNop()
	}
	return &MarketUseCase{history: h, quotes: q, metrics: m, logger: l, now: time.Now}
}

// LatestPrice asks the spot provider first and falls back to the last bar of
// the hourly chart. Stocks and indices always take the chart path.
func (u *MarketUseCase) LatestPrice(ctx context.Context, symbol string) (*models.PriceQuote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	price, qerr := u.quotes.FetchPrice(ctx, symbol)
	if qerr == nil {
		u.metrics.RecordLastPrice(symbol, price)
		return &models.PriceQuote{Symbol: symbol, Price: price, Source: models.PriceFromQuote, AsOf: u.now().UTC()}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var unsupported *models.UnsupportedAssetTypeError
	if !errors.As(qerr, &unsupported) {
		u.metrics.RecordError("price_quote")
		u.logger.Warn("spot price failed, using chart",
			applogger.String("symbol", symbol),
			applogger.Error(qerr),
		)
	}

	series, herr := u.history.FetchSeries(ctx, symbol, repository.TF1h)
	if herr != nil {
		u.metrics.RecordError("price_history")
		return nil, fmt.Errorf("%w for %s: %w", ErrPriceUnavailable, symbol, errors.Join(qerr, herr))
	}
	last, ok := series.Last()
	if !ok {
		return nil, fmt.Errorf("%w for %s: %w", ErrPriceUnavailable, symbol, models.ErrEmptySeries)
	}
	u.metrics.RecordLastPrice(symbol, last.Close)
	return &models.PriceQuote{Symbol: symbol, Price: last.Close, Source: models.PriceFromHistory, AsOf: last.Time}, nil
}

// Indicators computes RSI, MACD and Bollinger readings over the chart
// history for timeframe.
func (u *MarketUseCase) Indicators(ctx context.Context, symbol, timeframe string) (*models.IndicatorReport, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	tf := repository.NormalizeTimeframe(timeframe)

	series, err := u.history.FetchSeries(ctx, symbol, tf)
	if err != nil {
		u.metrics.RecordError("indicators_history")
		return nil, err
	}
	if series.Symbol == "" {
		series.Symbol = symbol
	}
	return analysis.Indicators(series, string(tf))
}
