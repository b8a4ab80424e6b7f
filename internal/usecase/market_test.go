package usecase

import (
	"context"
	"errors"
	"testing"

	"TradeSignal/internal/domain/models"
	"TradeSignal/internal/domain/repository"
	"TradeSignal/internal/services/analysis"
	"TradeSignal/pkg/metrics"
)

type timeframeHistory struct {
	series models.PriceSeries
	err    error
	tfs    []repository.Timeframe
}

func (h *timeframeHistory) FetchSeries(ctx context.Context, symbol string, tf repository.Timeframe) (models.PriceSeries, error) {
	h.tfs = append(h.tfs, tf)
	return h.series, h.err
}

func TestMarketLatestPrice(t *testing.T) {
	chart := closesSeries("AAPL", []float64{181.2, 182.5, 183.9})
	lastBar, _ := chart.Last()

	cases := []struct {
		name      string
		quotes    *fakeQuotes
		history   *timeframeHistory
		wantPrice float64
		wantSrc   models.PriceSource
		wantErr   bool
	}{
		{
			name:      "spot provider answers",
			quotes:    &fakeQuotes{price: 1.0842},
			history:   &timeframeHistory{},
			wantPrice: 1.0842,
			wantSrc:   models.PriceFromQuote,
		},
		{
			name:      "unsupported class reads the chart",
			quotes:    &fakeQuotes{err: &models.UnsupportedAssetTypeError{Symbol: "AAPL", Class: models.AssetStocks}},
			history:   &timeframeHistory{series: chart},
			wantPrice: 183.9,
			wantSrc:   models.PriceFromHistory,
		},
		{
			name:      "spot failure reads the chart",
			quotes:    &fakeQuotes{err: fetchErr},
			history:   &timeframeHistory{series: chart},
			wantPrice: 183.9,
			wantSrc:   models.PriceFromHistory,
		},
		{
			name:    "both sources fail",
			quotes:  &fakeQuotes{err: fetchErr},
			history: &timeframeHistory{err: &models.MalformedResponseError{Source: "chart", Reason: "no result"}},
			wantErr: true,
		},
		{
			name:    "empty chart",
			quotes:  &fakeQuotes{err: fetchErr},
			history: &timeframeHistory{series: models.PriceSeries{Symbol: "AAPL"}},
			wantErr: true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			uc := NewMarketUseCase(tc.history, tc.quotes, metrics.Nop{}, nil)
			uc.now = fixedNow

			q, err := uc.LatestPrice(context.Background(), " aapl ")
			if tc.wantErr {
				if !errors.Is(err, ErrPriceUnavailable) {
					t.Fatalf("expected ErrPriceUnavailable, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("latest price: %v", err)
			}
			if q.Symbol != "AAPL" || q.Price != tc.wantPrice || q.Source != tc.wantSrc {
				t.Fatalf("unexpected quote %+v", q)
			}
			switch tc.wantSrc {
			case models.PriceFromQuote:
				if len(tc.history.tfs) != 0 || !q.AsOf.Equal(fixedNow()) {
					t.Fatalf("quote path should not read history: %+v", q)
				}
			case models.PriceFromHistory:
				if len(tc.history.tfs) != 1 || tc.history.tfs[0] != repository.TF1h || !q.AsOf.Equal(lastBar.Time) {
					t.Fatalf("history fallback should read one hourly chart, got %v %+v", tc.history.tfs, q)
				}
			}
		})
	}
}

func TestMarketLatestPriceCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	h := &timeframeHistory{}
	uc := NewMarketUseCase(h, &fakeQuotes{err: context.Canceled}, metrics.Nop{}, nil)

	if _, err := uc.LatestPrice(ctx, "EURUSD=X"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if len(h.tfs) != 0 {
		t.Fatalf("canceled request must not fall back to the chart")
	}
}

func TestMarketIndicators(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100 + float64(i*i)
	}
	cases := []struct {
		name    string
		tf      string
		history *timeframeHistory
		wantTF  repository.Timeframe
		check   func(t *testing.T, rep *models.IndicatorReport, err error)
	}{
		{
			name:    "full report",
			tf:      "4h",
			history: &timeframeHistory{series: closesSeries("BTC-USD", closes)},
			wantTF:  repository.TF4h,
			check: func(t *testing.T, rep *models.IndicatorReport, err error) {
				if err != nil {
					t.Fatalf("indicators: %v", err)
				}
				if rep.RSI == nil || rep.MACD == nil || rep.Bollinger == nil || rep.Timeframe != "4h" {
					t.Fatalf("incomplete report %+v", rep)
				}
			},
		},
		{
			name:    "default timeframe",
			tf:      "",
			history: &timeframeHistory{series: closesSeries("BTC-USD", closes[:25])},
			wantTF:  repository.TF1d,
			check: func(t *testing.T, rep *models.IndicatorReport, err error) {
				if err != nil || rep.MACD != nil {
					t.Fatalf("25 bars should report without MACD: %+v err=%v", rep, err)
				}
			},
		},
		{
			name:    "short history",
			tf:      "1d",
			history: &timeframeHistory{series: closesSeries("BTC-USD", closes[:10])},
			wantTF:  repository.TF1d,
			check: func(t *testing.T, rep *models.IndicatorReport, err error) {
				var ie *models.InsufficientDataError
				if !errors.As(err, &ie) || ie.Need != analysis.MinIndicatorBars {
					t.Fatalf("expected insufficient data, got %v", err)
				}
			},
		},
		{
			name:    "history failure",
			tf:      "1h",
			history: &timeframeHistory{err: fetchErr},
			wantTF:  repository.TF1h,
			check: func(t *testing.T, rep *models.IndicatorReport, err error) {
				if models.KindOf(err) != models.KindFetchExhausted {
					t.Fatalf("expected fetch exhausted, got %v", err)
				}
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			uc := NewMarketUseCase(tc.history, &fakeQuotes{}, metrics.Nop{}, nil)
			rep, err := uc.Indicators(context.Background(), "btc-usd", tc.tf)
			tc.check(t, rep, err)
			if len(tc.history.tfs) != 1 || tc.history.tfs[0] != tc.wantTF {
				t.Fatalf("fetched %v, want %s", tc.history.tfs, tc.wantTF)
			}
		})
	}
}
