package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"TradeSignal/internal/domain/models"
	applogger "TradeSignal/pkg/logger"
)

// Scanner runs the cascade over a symbol list with a bounded number of
// workers. Relay spacing is still enforced by the shared limiter.
type Scanner struct {
	gen     SignalGenerator
	workers int
	timeout time.Duration
	logger  *applogger.Logger
}

func NewScanner(gen SignalGenerator, workers int, timeout time.Duration, l *applogger.Logger) *Scanner {
	if workers < 1 {
		workers = 1
	}
	return &Scanner{gen: gen, workers: workers, timeout: timeout, logger: l}
}

// Scan returns the BUY/SELL signals found, ordered by symbol, and the error
// message per symbol whose cascade failed.
func (s *Scanner) Scan(ctx context.Context, symbols []string, timeframe string) *models.ScanResult {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	res := &models.ScanResult{
		Timeframe: timeframe,
		Scanned:   len(symbols),
		Signals:   []models.Signal{},
		Failures:  map[string]string{},
		StartedAt: time.Now().UTC(),
	}

	type item struct {
		symbol string
		sig    *models.Signal
		err    error
	}
	jobs := make(chan string)
	ch := make(chan item, len(symbols))
	var wg sync.WaitGroup

	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sym := range jobs {
				sig, err := s.gen.Generate(ctx, models.SignalRequest{Symbol: sym, Timeframe: timeframe})
				ch <- item{sym, sig, err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, sym := range symbols {
			select {
			case jobs <- sym:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() { wg.Wait(); close(ch) }()

	processed := make(map[string]bool, len(symbols))
	for it := range ch {
		processed[it.symbol] = true
		if it.err != nil {
			res.Failures[it.symbol] = it.err.Error()
			continue
		}
		if it.sig.Actionable() {
			res.Signals = append(res.Signals, *it.sig)
		}
	}
	// Symbols never dispatched because ctx ended.
	for _, sym := range symbols {
		if !processed[sym] && ctx.Err() != nil {
			res.Failures[sym] = ctx.Err().Error()
		}
	}

	sort.Slice(res.Signals, func(i, j int) bool { return res.Signals[i].Symbol < res.Signals[j].Symbol })
	if len(res.Failures) == 0 {
		res.Failures = nil
	}
	res.Duration = time.Since(res.StartedAt)

	s.logger.Info("scan finished",
		applogger.String("timeframe", timeframe),
		applogger.Int("scanned", res.Scanned),
		applogger.Int("signals", len(res.Signals)),
		applogger.Int("failures", len(res.Failures)),
		applogger.Duration("duration_ms", res.Duration),
	)
	return res
}
