package analysis

import (
	"errors"
	"math"
	"strings"
	"testing"

	"TradeSignal/internal/domain/models"
)

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func quadratic(n int, sign float64) models.PriceSeries {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 1000 + sign*float64(i*i)
	}
	return seriesOf(closes...)
}

func TestRSI(t *testing.T) {
	alternating := []float64{10}
	for i := 0; i < 14; i++ {
		if i%2 == 0 {
			alternating = append(alternating, 11)
		} else {
			alternating = append(alternating, 10)
		}
	}

	cases := []struct {
		name   string
		closes []float64
		want   float64
		ok     bool
	}{
		{"rising", linear(30, 100, 1).Closes(), 100, true},
		{"falling", linear(30, 100, -1).Closes(), 0, true},
		{"flat", repeat(5, 20), 50, true},
		{"balanced moves", alternating, 50, true},
		{"too short", linear(14, 100, 1).Closes(), 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := RSI(tc.closes, 14)
			if ok != tc.ok {
				t.Fatalf("ok=%v, want %v", ok, tc.ok)
			}
			if ok && math.Abs(got-tc.want) > eps {
				t.Fatalf("rsi=%v, want %v", got, tc.want)
			}
		})
	}
}

func TestEMASeedsWithMean(t *testing.T) {
	got := EMA([]float64{1, 2, 3, 4}, 2)
	if !math.IsNaN(got[0]) {
		t.Fatalf("value before the seed should be NaN, got %v", got[0])
	}
	want := []float64{1.5, 2.5, 3.5}
	for i, w := range want {
		if math.Abs(got[i+1]-w) > 1e-12 {
			t.Fatalf("ema[%d]=%v, want %v", i+1, got[i+1], w)
		}
	}
}

func TestMACD(t *testing.T) {
	// A linear series keeps both EMAs at a constant lag, so the line is
	// (slow-fast)/2 * slope and the histogram vanishes.
	line, sig, hist, ok := MACD(linear(60, 100, 2).Closes(), 12, 26, 9)
	if !ok {
		t.Fatalf("expected a reading for 60 bars")
	}
	if math.Abs(line-14) > 1e-9 || math.Abs(sig-14) > 1e-9 || math.Abs(hist) > 1e-9 {
		t.Fatalf("line=%v signal=%v hist=%v, want 14/14/0", line, sig, hist)
	}

	if _, _, _, ok := MACD(linear(33, 100, 1).Closes(), 12, 26, 9); ok {
		t.Fatalf("33 bars cannot fill a 26/9 MACD")
	}
	if _, _, _, ok := MACD(linear(34, 100, 1).Closes(), 12, 26, 9); !ok {
		t.Fatalf("34 bars should be enough")
	}
}

func TestBollinger(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 9
		if i%2 == 1 {
			closes[i] = 11
		}
	}
	up, mid, low, ok := Bollinger(closes, 20, 2)
	if !ok || math.Abs(mid-10) > eps || math.Abs(up-12) > eps || math.Abs(low-8) > eps {
		t.Fatalf("got %v/%v/%v ok=%v, want 12/10/8", up, mid, low, ok)
	}
	if _, _, _, ok := Bollinger(closes[:19], 20, 2); ok {
		t.Fatalf("expected no reading below the period")
	}
}

func TestIndicators(t *testing.T) {
	spike := append(repeat(10, 19), 30)

	cases := []struct {
		name      string
		series    models.PriceSeries
		rsiZone   models.IndicatorZone
		macdBias  models.IndicatorZone // empty: no MACD reading expected
		bandZone  models.IndicatorZone
		summaryIn string
	}{
		{"accelerating up", quadratic(40, 1), models.ZoneOverbought, models.ZoneBullish, "", "(Overbought)"},
		{"accelerating down", quadratic(40, -1), models.ZoneOversold, models.ZoneBearish, "", "(Oversold)"},
		{"spike above the band", seriesOf(spike...), models.ZoneOverbought, "", models.ZoneAboveBand, "(Trending Strong Up)"},
		{"flat", seriesOf(repeat(7, 25)...), models.ZoneNeutral, "", models.ZoneInsideBand, "(Neutral)"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rep, err := Indicators(tc.series, "1d")
			if err != nil {
				t.Fatalf("indicators: %v", err)
			}
			if rep.RSI == nil || rep.RSI.Zone != tc.rsiZone {
				t.Fatalf("unexpected rsi %+v", rep.RSI)
			}
			if tc.macdBias == "" {
				if rep.MACD != nil {
					t.Fatalf("short series should omit MACD, got %+v", rep.MACD)
				}
			} else if rep.MACD == nil || rep.MACD.Bias != tc.macdBias {
				t.Fatalf("unexpected macd %+v", rep.MACD)
			}
			if rep.Bollinger == nil {
				t.Fatalf("bollinger missing")
			}
			if tc.bandZone != "" && rep.Bollinger.Position != tc.bandZone {
				t.Fatalf("band position %s, want %s", rep.Bollinger.Position, tc.bandZone)
			}
			joined := strings.Join([]string{rep.Summary["RSI (14)"], rep.Summary["MACD (12, 26, 9)"], rep.Summary["Bollinger Bands (20, 2)"]}, " ")
			if !strings.Contains(joined, tc.summaryIn) {
				t.Fatalf("summary %q lacks %q", joined, tc.summaryIn)
			}
			last, _ := tc.series.Last()
			if rep.LatestClose != last.Close || rep.Bars != tc.series.Len() || rep.Summary["Latest Close"] == "" {
				t.Fatalf("unexpected header %+v", rep)
			}
		})
	}
}

func TestIndicatorsNeedTwentyBars(t *testing.T) {
	_, err := Indicators(linear(19, 100, 1), "1h")
	var ie *models.InsufficientDataError
	if !errors.As(err, &ie) || ie.Need != MinIndicatorBars || ie.Have != 19 {
		t.Fatalf("expected insufficient data error, got %v", err)
	}
}
