package repository

import "time"

// Timeframe represents candle resolution buckets.
type Timeframe string

const (
	TF1h Timeframe = "1h"
	TF4h Timeframe = "4h"
	TF1d Timeframe = "1d"
)

// IsValidTimeframe returns true if tf is a supported timeframe.
func IsValidTimeframe(tf Timeframe) bool {
	switch tf {
	case TF1h, TF4h, TF1d:
		return true
	default:
		return false
	}
}

// DefaultTimeframe returns the default timeframe.
func DefaultTimeframe() Timeframe { return TF1d }

// NormalizeTimeframe converts raw string to a valid timeframe (or default).
func NormalizeTimeframe(s string) Timeframe {
	if s == "" {
		return DefaultTimeframe()
	}
	tf := Timeframe(s)
	if IsValidTimeframe(tf) {
		return tf
	}
	return DefaultTimeframe()
}

// ChartParams returns the provider interval and lookback range used to fetch
// history for tf. The provider has no native 4h bars, so 4h reads hourly bars
// over a longer range.
func ChartParams(tf Timeframe) (interval, rng string) {
	switch tf {
	case TF1h:
		return "1h", "1mo"
	case TF4h:
		return "1h", "3mo"
	default:
		return "1d", "3mo"
	}
}

// BarDuration is the wall-clock length of one bar.
func BarDuration(tf Timeframe) time.Duration {
	switch tf {
	case TF1h:
		return time.Hour
	case TF4h:
		return 4 * time.Hour
	default:
		return 24 * time.Hour
	}
}
