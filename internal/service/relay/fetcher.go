package relay

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"TradeSignal/internal/domain/models"
	"TradeSignal/internal/domain/repository"
	xhttp "TradeSignal/pkg/http"
	applogger "TradeSignal/pkg/logger"
	"TradeSignal/pkg/metrics"
)

// DefaultTimeout bounds a single relay attempt.
const DefaultTimeout = 15 * time.Second

// Acquirer gates each outbound attempt. Implemented by ratelimit.IntervalLimiter.
type Acquirer interface {
	Acquire(ctx context.Context, source string) error
}

// Fetcher sends one logical GET through an ordered relay list, one relay at a
// time, until a relay answers with a body the caller can decode.
type Fetcher struct {
	client  *xhttp.Client
	limiter Acquirer
	logger  *applogger.Logger
	metrics repository.Metrics
	headers map[string]string
}

// Option configures Fetcher.
type Option func(*Fetcher)

func WithLogger(l *applogger.Logger) Option {
	return func(f *Fetcher) { f.logger = l }
}

func WithMetrics(m repository.Metrics) Option {
	return func(f *Fetcher) { f.metrics = m }
}

// NewFetcher creates a fetcher. client should not carry its own timeout
// shorter than the per-call timeout passed to Fetch.
func NewFetcher(client *xhttp.Client, limiter Acquirer, opts ...Option) *Fetcher {
	f := &Fetcher{
		client:  client,
		limiter: limiter,
		logger:  applogger.NewNop(),
		metrics: metrics.Nop{},
		headers: map[string]string{"Accept": "application/json"},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ComposeURL builds the URL sent to relay r for target.
func ComposeURL(r models.Relay, target string) string {
	if r.Prefix == "" {
		return target
	}
	if r.Encode {
		return r.Prefix + url.QueryEscape(target)
	}
	return r.Prefix + target
}

// Fetch tries each relay in order. decode receives the raw body and its error
// counts as a relay failure. Each relay is tried at most once. When every
// relay fails a *models.FetchExhaustedError is returned. Cancellation of ctx
// aborts the whole call with ctx.Err().
func (f *Fetcher) Fetch(ctx context.Context, symbol, target string, relays []models.Relay, timeout time.Duration, decode func([]byte) error) error {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	var last error
	tried := 0
	for _, r := range relays {
		if err := f.limiter.Acquire(ctx, r.Name); err != nil {
			return fmt.Errorf("rate limit %s: %w", r.Name, err)
		}
		tried++

		err := f.attempt(ctx, r, target, timeout, decode)
		if err == nil {
			f.metrics.RecordRelayAttempt(r.Name, "success")
			return nil
		}
		// The parent context ended: stop rotating.
		if ctxErr := ctx.Err(); ctxErr != nil {
			f.metrics.RecordRelayAttempt(r.Name, "canceled")
			return ctxErr
		}

		last = fmt.Errorf("relay %s: %w", r.Name, err)
		f.metrics.RecordRelayAttempt(r.Name, outcome(err))
		f.logger.Warn("relay attempt failed",
			applogger.String("relay", r.Name),
			applogger.String("symbol", symbol),
			applogger.Error(err),
		)
	}

	return &models.FetchExhaustedError{Symbol: symbol, Tried: tried, Last: last}
}

func (f *Fetcher) attempt(ctx context.Context, r models.Relay, target string, timeout time.Duration, decode func([]byte) error) error {
	actx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body []byte
	err := f.client.SendAndParse(actx, &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     ComposeURL(r, target),
		Headers: f.headers,
	}, &body)
	if err != nil {
		return err
	}
	if err := decode(body); err != nil {
		return &decodeError{err: err}
	}
	return nil
}

type decodeError struct{ err error }

func (e *decodeError) Error() string { return "decode: " + e.err.Error() }
func (e *decodeError) Unwrap() error { return e.err }

func outcome(err error) string {
	var se *xhttp.StatusError
	var de *decodeError
	switch {
	case errors.As(err, &se):
		return "status"
	case errors.As(err, &de):
		return "decode"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "transport"
	}
}
