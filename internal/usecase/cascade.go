package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"TradeSignal/internal/domain/models"
	"TradeSignal/internal/domain/repository"
	"TradeSignal/internal/services/analysis"
	applogger "TradeSignal/pkg/logger"
	"TradeSignal/pkg/metrics"
	xutil "TradeSignal/pkg/util"

	"github.com/google/uuid"
)

var errPrimaryDisabled = errors.New("primary service disabled")

// DefaultPeriod is the lookback sent to the primary service when a request
// names none.
const DefaultPeriod = "90d"

// CascadeConfig tunes the rule-based tiers.
type CascadeConfig struct {
	Window           int
	TradeZone        float64
	TargetZone       float64
	SyntheticPeriods int
	DefaultPeriod    string
}

func (c *CascadeConfig) setDefaults() {
	if c.Window < 2 {
		c.Window = 24
	}
	if c.TradeZone <= 0 {
		c.TradeZone = analysis.DefaultTradeZone
	}
	if c.TargetZone <= 0 {
		c.TargetZone = analysis.DefaultTargetZone
	}
	if c.SyntheticPeriods <= 0 {
		c.SyntheticPeriods = analysis.DefaultSyntheticPeriods
	}
	if c.DefaultPeriod == "" {
		c.DefaultPeriod = DefaultPeriod
	}
}

type state int

const (
	tryPrimary state = iota
	tryRegression
	trySynthetic
	done
	failed
)

// Cascade produces a signal from the first tier that succeeds: the primary
// service, then the regression channel, then the synthetic SMA. Tiers run
// one after another, never concurrently.
type Cascade struct {
	primary repository.PrimaryPredictor
	history repository.HistoryProvider
	quotes  repository.QuoteProvider
	cfg     CascadeConfig

	rndMu sync.Mutex
	rnd   analysis.RandomSource

	now     func() time.Time
	newID   func() string
	logger  *applogger.Logger
	metrics repository.Metrics
}

// CascadeOption configures Cascade.
type CascadeOption func(*Cascade)

// WithRandom injects the synthetic back-fill random source.
func WithRandom(r analysis.RandomSource) CascadeOption {
	return func(c *Cascade) { c.rnd = r }
}

func WithNow(now func() time.Time) CascadeOption {
	return func(c *Cascade) { c.now = now }
}

func WithCascadeLogger(l *applogger.Logger) CascadeOption {
	return func(c *Cascade) { c.logger = l }
}

func WithCascadeMetrics(m repository.Metrics) CascadeOption {
	return func(c *Cascade) { c.metrics = m }
}

// NewCascade wires the tiers. primary may be nil, in which case the cascade
// starts directly at the regression tier.
func NewCascade(primary repository.PrimaryPredictor, history repository.HistoryProvider, quotes repository.QuoteProvider, cfg CascadeConfig, opts ...CascadeOption) *Cascade {
	cfg.setDefaults()
	c := &Cascade{
		primary: primary,
		history: history,
		quotes:  quotes,
		cfg:     cfg,
		now:     time.Now,
		newID:   uuid.NewString,
		logger:  applogger.NewNop(),
		metrics: metrics.Nop{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.rnd == nil {
		c.rnd = analysis.NewRandom(uint64(c.now().UnixNano()))
	}
	return c
}

// Generate runs the cascade for one request. The only error it returns is a
// *models.CascadeError carrying the last tier's failure, or the context error
// wrapped the same way when ctx ends.
func (c *Cascade) Generate(ctx context.Context, req models.SignalRequest) (*models.Signal, error) {
	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	tf := repository.NormalizeTimeframe(req.Timeframe)
	period := req.Period
	if period == "" {
		period = c.cfg.DefaultPeriod
	}

	attempts := make(map[models.Provenance]string, 3)
	var (
		sig     *models.Signal
		lastErr error
		tier    models.Provenance
	)

	st := tryPrimary
	for st != done && st != failed {
		var (
			next state
			err  error
		)
		start := c.now()

		switch st {
		case tryPrimary:
			tier, next = models.ProvenancePrimary, tryRegression
			sig, err = c.runPrimary(ctx, symbol, tf, period)
		case tryRegression:
			tier, next = models.ProvenanceRegression, trySynthetic
			sig, err = c.runRegression(ctx, symbol, tf)
		case trySynthetic:
			tier, next = models.ProvenanceSynthetic, failed
			sig, err = c.runSynthetic(ctx, symbol, tf)
		}
		c.metrics.RecordLatency("tier_"+strings.ToLower(string(tier)), c.now().Sub(start).Seconds())
		if err == nil && sig == nil {
			err = &models.MalformedResponseError{Source: string(tier), Reason: "no signal returned"}
		}

		if err == nil {
			c.metrics.RecordTier(string(tier), "success")
			st = done
			continue
		}

		kind := models.KindOf(err)
		attempts[tier] = err.Error()
		lastErr = err
		c.metrics.RecordTier(string(tier), string(kind))
		c.logger.Warn("cascade tier failed",
			applogger.String("symbol", symbol),
			applogger.String("tier", string(tier)),
			applogger.String("kind", string(kind)),
			applogger.Error(err),
		)

		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, &models.CascadeError{Tier: tier, Kind: models.KindCanceled, Err: ctxErr, Attempts: attempts}
		}
		st = next
	}

	if st == failed {
		kind := models.KindOf(lastErr)
		c.metrics.RecordError(string(kind))
		c.logger.Error("all cascade tiers failed",
			applogger.String("symbol", symbol),
			applogger.String("kind", string(kind)),
			applogger.Error(lastErr),
		)
		return nil, &models.CascadeError{Tier: tier, Kind: kind, Err: lastErr, Attempts: attempts}
	}

	sig.Symbol = symbol
	sig.Timeframe = string(tf)
	sig.Provenance = tier
	if sig.ID == "" {
		sig.ID = c.newID()
	}
	if sig.GeneratedAt.IsZero() {
		sig.GeneratedAt = c.now().UTC()
	}
	if tier != models.ProvenancePrimary {
		c.logger.Info("signal served by fallback tier",
			applogger.String("symbol", symbol),
			applogger.String("tier", string(tier)),
			applogger.String("signal", string(sig.Kind)),
		)
	}
	return sig, nil
}

func (c *Cascade) runPrimary(ctx context.Context, symbol string, tf repository.Timeframe, period string) (*models.Signal, error) {
	if c.primary == nil {
		return nil, errPrimaryDisabled
	}
	return c.primary.Predict(ctx, symbol, tf, period)
}

// runRegression fits the channel on completed bars and tests the latest
// close against it, so it needs one bar more than the window.
func (c *Cascade) runRegression(ctx context.Context, symbol string, tf repository.Timeframe) (*models.Signal, error) {
	series, err := c.history.FetchSeries(ctx, symbol, tf)
	if err != nil {
		return nil, err
	}
	if need := c.cfg.Window + 1; series.Len() < need {
		return nil, &models.InsufficientDataError{Have: series.Len(), Need: need}
	}

	ch, err := analysis.AnalyzeChannel(series.Head(1), c.cfg.Window)
	if err != nil {
		return nil, err
	}
	latest, _ := series.Last()
	kind, reason := analysis.ClassifyChannel(ch, latest.Close, c.cfg.TradeZone, c.cfg.TargetZone)

	return &models.Signal{
		Kind:   kind,
		Reason: reason,
		Price:  latest.Close,
	}, nil
}

func (c *Cascade) runSynthetic(ctx context.Context, symbol string, tf repository.Timeframe) (*models.Signal, error) {
	price, err := c.quotes.FetchPrice(ctx, symbol)
	if err != nil {
		return nil, err
	}

	step := repository.BarDuration(tf)
	end := xutil.AlignTime(c.now(), step)

	c.rndMu.Lock()
	series := analysis.Backfill(price, c.cfg.SyntheticPeriods, end, step, c.rnd)
	c.rndMu.Unlock()
	series.Symbol = symbol

	kind, conf, reason := analysis.ClassifySMA(series, price)
	return &models.Signal{
		Kind:       kind,
		Reason:     reason,
		Price:      price,
		Confidence: models.Float(conf),
	}, nil
}
