package analysis

import (
	"fmt"
	"math"

	"TradeSignal/internal/domain/models"
)

const (
	rsiPeriod      = 14
	rsiOverbought  = 70
	rsiOversold    = 30
	macdFast       = 12
	macdSlow       = 26
	macdSignal     = 9
	bollingerBars  = 20
	bollingerWidth = 2.0

	// MinIndicatorBars is the shortest series Indicators accepts.
	MinIndicatorBars = bollingerBars
)

// RSI returns Wilder's relative strength index over closes. The first average
// is a plain mean of the first period changes.
func RSI(closes []float64, period int) (float64, bool) {
	if period <= 0 || len(closes) < period+1 {
		return 0, false
	}
	var gain, loss float64
	for i := 1; i <= period; i++ {
		g, l := change(closes[i-1], closes[i])
		gain += g
		loss += l
	}
	gain /= float64(period)
	loss /= float64(period)
	for i := period + 1; i < len(closes); i++ {
		g, l := change(closes[i-1], closes[i])
		gain = (gain*float64(period-1) + g) / float64(period)
		loss = (loss*float64(period-1) + l) / float64(period)
	}
	switch {
	case gain == 0 && loss == 0:
		return 50, true
	case loss == 0:
		return 100, true
	}
	return 100 - 100/(1+gain/loss), true
}

func change(prev, cur float64) (gain, loss float64) {
	d := cur - prev
	if d > 0 {
		return d, 0
	}
	return 0, -d
}

// EMA returns the exponential moving average series of values, seeded with
// the mean of the first period values. out[i] is defined for i >= period-1;
// earlier entries are NaN.
func EMA(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	for i := range out {
		out[i] = math.NaN()
	}
	if period <= 0 || len(values) < period {
		return out
	}
	seed := 0.0
	for _, v := range values[:period] {
		seed += v
	}
	out[period-1] = seed / float64(period)
	k := 2 / float64(period+1)
	for i := period; i < len(values); i++ {
		out[i] = values[i]*k + out[i-1]*(1-k)
	}
	return out
}

// MACD returns the MACD line, its signal line and the histogram at the last
// value. ok is false until slow+signal-1 values are available.
func MACD(closes []float64, fast, slow, signal int) (line, sig, hist float64, ok bool) {
	if fast <= 0 || slow <= fast || signal <= 0 || len(closes) < slow+signal-1 {
		return 0, 0, 0, false
	}
	f := EMA(closes, fast)
	s := EMA(closes, slow)
	diff := make([]float64, 0, len(closes)-slow+1)
	for i := slow - 1; i < len(closes); i++ {
		diff = append(diff, f[i]-s[i])
	}
	sl := EMA(diff, signal)
	line = diff[len(diff)-1]
	sig = sl[len(sl)-1]
	return line, sig, line - sig, true
}

// Bollinger returns the bands over the last period closes using the
// population standard deviation.
func Bollinger(closes []float64, period int, width float64) (upper, middle, lower float64, ok bool) {
	mid, err := CalculateSMA(closes, period)
	if err != nil {
		return 0, 0, 0, false
	}
	var ss float64
	for _, c := range closes[len(closes)-period:] {
		ss += (c - mid) * (c - mid)
	}
	sd := math.Sqrt(ss / float64(period))
	return mid + width*sd, mid, mid - width*sd, true
}

// Indicators computes RSI(14), MACD(12,26,9) and Bollinger(20,2) at the
// latest bar of series.
func Indicators(series models.PriceSeries, timeframe string) (*models.IndicatorReport, error) {
	if series.Len() < MinIndicatorBars {
		return nil, &models.InsufficientDataError{Have: series.Len(), Need: MinIndicatorBars}
	}
	closes := series.Closes()
	last, _ := series.Last()

	rep := &models.IndicatorReport{
		Symbol:      series.Symbol,
		Timeframe:   timeframe,
		Bars:        series.Len(),
		LatestClose: last.Close,
		AsOf:        last.Time,
		Summary:     make(map[string]string, 4),
	}

	if v, ok := RSI(closes, rsiPeriod); ok {
		zone := models.ZoneNeutral
		switch {
		case v > rsiOverbought:
			zone = models.ZoneOverbought
		case v < rsiOversold:
			zone = models.ZoneOversold
		}
		rep.RSI = &models.RSIReading{Period: rsiPeriod, Value: v, Zone: zone}
		rep.Summary["RSI (14)"] = fmt.Sprintf("%.2f (%s)", v, label(zone))
	}

	if line, sig, hist, ok := MACD(closes, macdFast, macdSlow, macdSignal); ok {
		bias := models.ZoneBearish
		if line > sig {
			bias = models.ZoneBullish
		}
		rep.MACD = &models.MACDReading{
			Fast: macdFast, Slow: macdSlow, Signal: macdSignal,
			MACD: line, SignalVal: sig, Histogram: hist, Bias: bias,
		}
		rep.Summary["MACD (12, 26, 9)"] = fmt.Sprintf("MACD: %.5f, Signal: %.5f (%s)", line, sig, label(bias))
	}

	if up, mid, low, ok := Bollinger(closes, bollingerBars, bollingerWidth); ok {
		pos := models.ZoneInsideBand
		text := fmt.Sprintf("Upper: %.4f, Middle: %.4f, Lower: %.4f", up, mid, low)
		switch {
		case last.Close > up:
			pos = models.ZoneAboveBand
			text += " (Trending Strong Up)"
		case last.Close < low:
			pos = models.ZoneBelowBand
			text += " (Trending Strong Down)"
		}
		rep.Bollinger = &models.BollingerReading{
			Period: bollingerBars, StdDev: bollingerWidth,
			Upper: up, Middle: mid, Lower: low, Position: pos,
		}
		rep.Summary["Bollinger Bands (20, 2)"] = text
	}

	rep.Summary["Latest Close"] = fmt.Sprintf("%.5f", last.Close)
	return rep, nil
}

func label(z models.IndicatorZone) string {
	switch z {
	case models.ZoneOverbought:
		return "Overbought"
	case models.ZoneOversold:
		return "Oversold"
	case models.ZoneBullish:
		return "Bullish"
	case models.ZoneBearish:
		return "Bearish"
	default:
		return "Neutral"
	}
}
