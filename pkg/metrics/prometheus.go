package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	tierOutcomes  *prometheus.CounterVec
	relayAttempts *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	lastPrice     *prometheus.GaugeVec
	queueDepth    *prometheus.GaugeVec
	latency       *prometheus.HistogramVec
}

// New creates a recorder registered on the default registry.
func New() *Recorder {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a recorder registered on reg. Tests pass a fresh
// prometheus.NewRegistry() to avoid duplicate registration.
func NewWithRegistry(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		tierOutcomes: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradesignal_tier_outcomes_total",
				Help: "Cascade tier attempts by outcome",
			},
			[]string{"tier", "outcome"},
		),
		relayAttempts: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradesignal_relay_attempts_total",
				Help: "Outbound attempts per relay by outcome",
			},
			[]string{"relay", "outcome"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradesignal_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tradesignal_last_price",
				Help: "Last price seen in a generated signal",
			},
			[]string{"symbol"},
		),
		queueDepth: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tradesignal_queue_depth",
				Help: "Items waiting in an in-process queue",
			},
			[]string{"queue"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tradesignal_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordTier counts one tier attempt ("success" or an error kind).
func (r *Recorder) RecordTier(tier, outcome string) {
	r.tierOutcomes.WithLabelValues(tier, outcome).Inc()
}

// RecordRelayAttempt counts one relay attempt.
func (r *Recorder) RecordRelayAttempt(relay, outcome string) {
	r.relayAttempts.WithLabelValues(relay, outcome).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordQueueDepth sets the current depth of a named queue.
func (r *Recorder) RecordQueueDepth(queue string, depth int) {
	r.queueDepth.WithLabelValues(queue).Set(float64(depth))
}

// Nop discards all measurements.
type Nop struct{}

func (Nop) RecordTier(string, string)         {}
func (Nop) RecordRelayAttempt(string, string) {}
func (Nop) RecordError(string)                {}
func (Nop) RecordLastPrice(string, float64)   {}
func (Nop) RecordLatency(string, float64)     {}
func (Nop) RecordQueueDepth(string, int)      {}
