package analysis

import (
	"math"
	"testing"
	"time"

	"TradeSignal/internal/domain/models"
)

func TestCalculateSMA(t *testing.T) {
	got, err := CalculateSMA([]float64{1, 2, 3, 4, 5}, 2)
	if err != nil || got != 4.5 {
		t.Fatalf("got %v err=%v, want 4.5", got, err)
	}
	if _, err := CalculateSMA([]float64{1}, 2); err == nil {
		t.Fatalf("expected error for short input")
	}
	if _, err := CalculateSMA([]float64{1}, 0); err == nil {
		t.Fatalf("expected error for zero period")
	}
}

func TestClassifySMA(t *testing.T) {
	rising := linear(30, 100, 1)  // sma10 > sma20
	falling := linear(30, 100, -1) // sma10 < sma20

	cases := []struct {
		name  string
		s     models.PriceSeries
		price float64
		want  models.SignalKind
		conf  float64
	}{
		{"buy", rising, 200, models.SignalBuy, 0.65},
		{"rising but price under fast", rising, 100, models.SignalHold, 0.5},
		{"sell", falling, 10, models.SignalSell, 0.65},
		{"falling but price over fast", falling, 100, models.SignalHold, 0.5},
		{"short history", linear(19, 100, 1), 200, models.SignalHold, 0.5},
	}
	for _, tc := range cases {
		kind, conf, reason := ClassifySMA(tc.s, tc.price)
		if kind != tc.want || conf != tc.conf {
			t.Fatalf("%s: got %s/%v, want %s/%v", tc.name, kind, conf, tc.want, tc.conf)
		}
		if reason == "" {
			t.Fatalf("%s: empty reason", tc.name)
		}
	}
}

type constRand float64

func (c constRand) Float64() float64 { return float64(c) }

func TestBackfillShape(t *testing.T) {
	end := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	s := Backfill(1.25, 50, end, time.Hour, NewRandom(7))

	if s.Len() != 50 {
		t.Fatalf("expected 50 bars, got %d", s.Len())
	}
	last, _ := s.Last()
	if last.Close != 1.25 || !last.Time.Equal(end) {
		t.Fatalf("last bar %+v, want close 1.25 at %v", last, end)
	}
	for i := 1; i < s.Len(); i++ {
		prev, cur := s.Points[i-1], s.Points[i]
		if !prev.Time.Before(cur.Time) {
			t.Fatalf("bars not ascending at %d", i)
		}
		// cur = prev*(1+d) with |d| <= 1%.
		if r := cur.Close/prev.Close - 1; math.Abs(r) > 0.01+1e-12 {
			t.Fatalf("step %d drift %v outside 1%%", i, r)
		}
		if cur.Volume != 0 || cur.Open != cur.Close {
			t.Fatalf("synthetic bar should be flat with zero volume: %+v", cur)
		}
	}
}

func TestBackfillDeterministicWithSeed(t *testing.T) {
	end := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	a := Backfill(100, 50, end, 24*time.Hour, NewRandom(42))
	b := Backfill(100, 50, end, 24*time.Hour, NewRandom(42))
	for i := range a.Points {
		if a.Points[i] != b.Points[i] {
			t.Fatalf("same seed diverged at %d", i)
		}
	}
}

func TestBackfillExtremes(t *testing.T) {
	end := time.Now()
	// Float64()=1 -> d=+1% every step, so older bars are always lower.
	s := Backfill(101, 3, end, time.Hour, constRand(1))
	if want := 101 / 1.01; math.Abs(s.Points[1].Close-want) > 1e-9 {
		t.Fatalf("unexpected back-filled price %v, want %v", s.Points[1].Close, want)
	}
	if Backfill(1, 0, end, time.Hour, constRand(0)).Len() != 0 {
		t.Fatalf("zero periods should give an empty series")
	}
}

func TestStopLossValue(t *testing.T) {
	cases := []struct {
		symbol      string
		entry, stop float64
		want        string
	}{
		{"EURUSD=X", 1.0850, 1.0800, "($5.00)"},
		{"USDJPY=X", 150.0, 148.5, "(¥1,500.00)"},
		{"USDZAR=X", 18.0, 17.9, "(ZAR 100.00)"},
		{"BTC-USD", 67000, 65000, "(~$20.00)"},
		{"AAPL", 190, 1390, "(~$1,200.00)"},
	}
	for _, tc := range cases {
		if got := StopLossValue(tc.symbol, tc.entry, tc.stop); got != tc.want {
			t.Fatalf("%s: got %q, want %q", tc.symbol, got, tc.want)
		}
	}
}
