package models

import "time"

// SignalKind is the recommended action.
type SignalKind string

const (
	SignalBuy  SignalKind = "BUY"
	SignalSell SignalKind = "SELL"
	SignalHold SignalKind = "HOLD"
)

// ParseSignalKind accepts the three upper-case action names only.
func ParseSignalKind(s string) (SignalKind, bool) {
	switch SignalKind(s) {
	case SignalBuy, SignalSell, SignalHold:
		return SignalKind(s), true
	default:
		return "", false
	}
}

// Provenance records which cascade tier produced a Signal.
type Provenance string

const (
	ProvenancePrimary    Provenance = "PRIMARY"
	ProvenanceRegression Provenance = "REGRESSION_FALLBACK"
	ProvenanceSynthetic  Provenance = "SYNTHETIC_FALLBACK"
)

// Signal is the only object returned by every tier of the cascade.
type Signal struct {
	ID          string     `json:"id"`
	Symbol      string     `json:"symbol"`
	Kind        SignalKind `json:"signal"`
	Reason      string     `json:"reason"`
	Price       float64    `json:"price"`
	Confidence  *float64   `json:"confidence,omitempty"`
	Timeframe   string     `json:"timeframe"`
	Provenance  Provenance `json:"provenance"`
	GeneratedAt time.Time  `json:"generated_at"`

	// Trade levels, only reported by the primary service.
	EntryPrice    *float64 `json:"entry_price,omitempty"`
	ExitPrice     *float64 `json:"exit_price,omitempty"`
	StopLoss      *float64 `json:"stop_loss,omitempty"`
	StopLossValue string   `json:"stop_loss_value,omitempty"`
}

// Actionable reports whether the signal is BUY or SELL.
func (s *Signal) Actionable() bool {
	return s != nil && (s.Kind == SignalBuy || s.Kind == SignalSell)
}

// Float returns a pointer to v, for the optional numeric fields.
func Float(v float64) *float64 { return &v }
