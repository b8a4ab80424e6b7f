package models

import "time"

// ScanResult is the outcome of running the cascade over a list of symbols.
// Only actionable (non-HOLD) signals are kept.
type ScanResult struct {
	AssetClass string            `json:"asset_class,omitempty"`
	Timeframe  string            `json:"timeframe"`
	Scanned    int               `json:"scanned"`
	Signals    []Signal          `json:"signals"`
	Failures   map[string]string `json:"failures,omitempty"`
	StartedAt  time.Time         `json:"started_at"`
	Duration   time.Duration     `json:"duration_ns"`
}
