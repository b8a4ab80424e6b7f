package quotes

import (
	"context"
	"net/url"
	"strings"
	"time"

	"TradeSignal/internal/domain/models"
	"TradeSignal/internal/service/relay"
	"TradeSignal/internal/services/marketdata"
)

const (
	DefaultForexURL  = "https://open.er-api.com/v6/latest/"
	DefaultCryptoURL = "https://api.coingecko.com/api/v3/simple/price"
)

// Config holds one endpoint and relay list per asset class.
type Config struct {
	ForexURL     string
	CryptoURL    string
	ForexRelays  []models.Relay
	CryptoRelays []models.Relay
	Timeout      time.Duration
}

// Provider looks up a single current price per asset class.
type Provider struct {
	cfg     Config
	fetcher *relay.Fetcher
}

func NewProvider(cfg Config, f *relay.Fetcher) *Provider {
	if cfg.ForexURL == "" {
		cfg.ForexURL = DefaultForexURL
	}
	if cfg.CryptoURL == "" {
		cfg.CryptoURL = DefaultCryptoURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = relay.DefaultTimeout
	}
	return &Provider{cfg: cfg, fetcher: f}
}

// FetchPrice returns the current price for symbol. Stocks and indices have no
// spot provider and yield *models.UnsupportedAssetTypeError.
func (p *Provider) FetchPrice(ctx context.Context, symbol string) (float64, error) {
	switch class := models.ClassifyAsset(symbol); class {
	case models.AssetForex:
		return p.forex(ctx, symbol)
	case models.AssetCrypto:
		return p.crypto(ctx, symbol)
	default:
		return 0, &models.UnsupportedAssetTypeError{Symbol: symbol, Class: class}
	}
}

func (p *Provider) forex(ctx context.Context, symbol string) (float64, error) {
	base, quote, err := marketdata.ForexPair(symbol)
	if err != nil {
		return 0, err
	}
	target := strings.TrimRight(p.cfg.ForexURL, "/") + "/" + base

	var price float64
	err = p.fetcher.Fetch(ctx, symbol, target, p.cfg.ForexRelays, p.cfg.Timeout, func(b []byte) error {
		v, err := marketdata.ExtractForexRate(b, base, quote)
		if err != nil {
			return err
		}
		price = v
		return nil
	})
	return price, err
}

func (p *Provider) crypto(ctx context.Context, symbol string) (float64, error) {
	id, vs, err := marketdata.CoinID(symbol)
	if err != nil {
		return 0, err
	}
	q := url.Values{}
	q.Set("ids", id)
	q.Set("vs_currencies", vs)
	target := p.cfg.CryptoURL + "?" + q.Encode()

	var price float64
	err = p.fetcher.Fetch(ctx, symbol, target, p.cfg.CryptoRelays, p.cfg.Timeout, func(b []byte) error {
		v, err := marketdata.ExtractSpotPrice(b, id, vs)
		if err != nil {
			return err
		}
		price = v
		return nil
	})
	return price, err
}
