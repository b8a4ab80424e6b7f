package analysis

import (
	"errors"

	"TradeSignal/internal/domain/models"
)

const (
	smaFast       = 10
	smaSlow       = 20
	minSMABars    = smaSlow
	smaConfidence = 0.65
	lowConfidence = 0.5
)

// CalculateSMA computes the simple moving average of the last period prices.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// ClassifySMA applies the SMA10/SMA20 crossover to series. Fewer than 20
// bars is not an error: it yields a low-confidence HOLD.
func ClassifySMA(series models.PriceSeries, currentPrice float64) (models.SignalKind, float64, string) {
	if series.Len() < minSMABars {
		return models.SignalHold, lowConfidence, "insufficient history for moving averages, low confidence"
	}
	closes := series.Closes()
	fast, _ := CalculateSMA(closes, smaFast)
	slow, _ := CalculateSMA(closes, smaSlow)

	switch {
	case fast > slow && currentPrice > fast:
		return models.SignalBuy, smaConfidence, "SMA10 above SMA20 with price above SMA10"
	case fast < slow && currentPrice < fast:
		return models.SignalSell, smaConfidence, "SMA10 below SMA20 with price below SMA10"
	default:
		return models.SignalHold, lowConfidence, "moving averages show no clear direction"
	}
}
