package scheduler

import (
	"context"
	"fmt"

	"TradeSignal/internal/domain/models"
	applogger "TradeSignal/pkg/logger"

	"github.com/robfig/cron/v3"
)

// Scanner runs the cascade over a symbol list.
type Scanner interface {
	Scan(ctx context.Context, symbols []string, timeframe string) *models.ScanResult
}

// Scheduler runs periodic scans over the configured asset classes.
// Signals found are persisted and published by the scanner's generator.
type Scheduler struct {
	cron      *cron.Cron
	scanner   Scanner
	assets    map[string][]string
	classes   []string
	timeframe string
	l         *applogger.Logger
	ctx       context.Context
	cancel    context.CancelFunc
}

// New creates a Scheduler.
func New(scanner Scanner, assets map[string][]string, classes []string, timeframe string, l *applogger.Logger) *Scheduler {
	if l == nil {
		l = applogger.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:      cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		scanner:   scanner,
		assets:    assets,
		classes:   classes,
		timeframe: timeframe,
		l:         l,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Register adds the scan job. expr uses the standard five-field cron syntax.
func (s *Scheduler) Register(expr string) error {
	if _, err := s.cron.AddFunc(expr, s.RunNow); err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.l.Info("scheduler started", applogger.Strings("asset_classes", s.classes))
}

// Stop cancels a running scan and waits for it to return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	s.l.Info("scheduler stopped")
}

// RunNow scans every configured asset class once, in order.
func (s *Scheduler) RunNow() {
	for _, class := range s.classes {
		if s.ctx.Err() != nil {
			return
		}
		symbols := s.assets[class]
		if len(symbols) == 0 {
			s.l.Warn("scheduled scan skipped: no symbols", applogger.String("asset_class", class))
			continue
		}
		res := s.scanner.Scan(s.ctx, symbols, s.timeframe)
		res.AssetClass = class
		for _, sig := range res.Signals {
			s.l.Info("scheduled scan signal",
				applogger.String("asset_class", class),
				applogger.String("symbol", sig.Symbol),
				applogger.String("signal", string(sig.Kind)),
				applogger.String("provenance", string(sig.Provenance)),
				applogger.Float64("price", sig.Price),
			)
		}
	}
}
