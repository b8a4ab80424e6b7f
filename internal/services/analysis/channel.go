package analysis

import (
	"math"

	"TradeSignal/internal/domain/models"
)

const (
	DefaultTradeZone  = 0.375
	DefaultTargetZone = 0.875
)

// AnalyzeChannel fits an OLS line to the trailing window closes against
// index 0..window-1 and derives the channel around the last fitted value.
func AnalyzeChannel(series models.PriceSeries, window int) (models.RegressionChannel, error) {
	if window < 2 {
		return models.RegressionChannel{}, &models.InsufficientDataError{Have: window, Need: 2}
	}
	if series.Len() < window {
		return models.RegressionChannel{}, &models.InsufficientDataError{Have: series.Len(), Need: window}
	}

	closes := series.Tail(window).Closes()
	n := float64(window)

	var sumX, sumY, sumXY, sumX2 float64
	for i, y := range closes {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}
	slope := (n*sumXY - sumX*sumY) / (n*sumX2 - sumX*sumX)
	intercept := (sumY - slope*sumX) / n

	var maxDev float64
	for i, y := range closes {
		if d := math.Abs(y - (intercept + slope*float64(i))); d > maxDev {
			maxDev = d
		}
	}

	end := intercept + slope*(n-1)
	ch := models.RegressionChannel{
		Slope:         slope,
		Intercept:     intercept,
		MaxDeviation:  maxDev,
		IsUpwardSlope: slope > 0,
		Center:        end,
		UpperBound:    end + maxDev,
		LowerBound:    end - maxDev,
	}
	if ch.IsUpwardSlope {
		ch.HeadReference = (end + ch.UpperBound) / 2
	} else {
		ch.HeadReference = (end + ch.LowerBound) / 2
	}
	return ch, nil
}

// TradeZone returns the band around the head reference.
func TradeZone(ch models.RegressionChannel, tradeZoneThreshold float64) (low, high float64) {
	w := ch.Width() * tradeZoneThreshold
	return ch.HeadReference - w, ch.HeadReference + w
}

// ClassifyChannel positions latestClose against the trade zone. A flat slope
// counts as downward. targetZoneThreshold is part of the signature for the
// take-profit side and is not consulted here.
func ClassifyChannel(ch models.RegressionChannel, latestClose, tradeZoneThreshold, targetZoneThreshold float64) (models.SignalKind, string) {
	_ = targetZoneThreshold

	zoneLow, zoneHigh := TradeZone(ch, tradeZoneThreshold)
	up := ch.IsUpwardSlope

	switch {
	case latestClose > zoneHigh && up:
		return models.SignalBuy, "breakout above upper trade zone in an uptrend"
	case latestClose < zoneLow && !up:
		return models.SignalSell, "breakout below lower trade zone in a downtrend"
	case latestClose >= zoneLow && latestClose <= zoneHigh:
		if up {
			return models.SignalBuy, "re-entry into trade zone in an uptrend, potential entry"
		}
		return models.SignalSell, "re-entry into trade zone in a downtrend, potential entry"
	default:
		return models.SignalHold, "within neutral zone"
	}
}
