package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"TradeSignal/internal/domain/models"
	"TradeSignal/internal/domain/repository"
	"TradeSignal/internal/service/cache"
	"TradeSignal/internal/service/relay"
	"TradeSignal/internal/services/marketdata"
)

const DefaultChartURL = "https://query1.finance.yahoo.com/v8/finance/chart/"

// Config for the chart history provider.
type Config struct {
	ChartURL string
	Relays   []models.Relay
	Timeout  time.Duration
	CacheTTL time.Duration
}

// HistoryProvider fetches chart history through the relay list.
type HistoryProvider struct {
	cfg     Config
	fetcher *relay.Fetcher
	cache   cache.BytesCache
}

// NewHistoryProvider creates the provider. c may be nil to disable caching.
func NewHistoryProvider(cfg Config, f *relay.Fetcher, c cache.BytesCache) *HistoryProvider {
	if cfg.ChartURL == "" {
		cfg.ChartURL = DefaultChartURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = relay.DefaultTimeout
	}
	return &HistoryProvider{cfg: cfg, fetcher: f, cache: c}
}

// ChartURL returns the upstream chart URL for symbol and tf.
func (p *HistoryProvider) ChartURL(symbol string, tf repository.Timeframe) string {
	interval, rng := repository.ChartParams(tf)
	q := url.Values{}
	q.Set("interval", interval)
	q.Set("range", rng)
	return strings.TrimRight(p.cfg.ChartURL, "/") + "/" + url.PathEscape(symbol) + "?" + q.Encode()
}

// FetchSeries returns the normalized series for symbol.
func (p *HistoryProvider) FetchSeries(ctx context.Context, symbol string, tf repository.Timeframe) (models.PriceSeries, error) {
	key := fmt.Sprintf("series:%s:%s", symbol, tf)
	s, _, err := cache.ReadThrough(ctx, p.cache, key, p.cfg.CacheTTL, func(ctx context.Context) (models.PriceSeries, error) {
		return p.fetch(ctx, symbol, tf)
	})
	return s, err
}

func (p *HistoryProvider) fetch(ctx context.Context, symbol string, tf repository.Timeframe) (models.PriceSeries, error) {
	var body []byte
	err := p.fetcher.Fetch(ctx, symbol, p.ChartURL(symbol, tf), p.cfg.Relays, p.cfg.Timeout, func(b []byte) error {
		if err := marketdata.ValidateChart(b); err != nil {
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		return models.PriceSeries{}, err
	}
	return marketdata.NormalizeChart(body, symbol)
}
