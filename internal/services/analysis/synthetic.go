package analysis

import (
	"math/rand/v2"
	"time"

	"TradeSignal/internal/domain/models"
)

const (
	DefaultSyntheticPeriods = 50
	maxStepDrift            = 0.01
)

// RandomSource is the subset of *rand.Rand the back-fill needs.
type RandomSource interface {
	Float64() float64
}

// NewRandom returns a seeded source. The same seed gives the same history.
func NewRandom(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Backfill manufactures periods bars ending at currentPrice, stepping back
// in time by step from end. Each older price is the newer one divided by
// (1+d), d uniform in [-1%, +1%]. The result only keeps indicators fed; it
// is not a real history.
func Backfill(currentPrice float64, periods int, end time.Time, step time.Duration, rnd RandomSource) models.PriceSeries {
	if periods <= 0 {
		return models.PriceSeries{}
	}
	points := make([]models.PricePoint, periods)
	p := currentPrice
	for i := periods - 1; i >= 0; i-- {
		ts := end.Add(-time.Duration(periods-1-i) * step)
		points[i] = models.PricePoint{Time: ts, Open: p, High: p, Low: p, Close: p}
		d := (rnd.Float64()*2 - 1) * maxStepDrift
		p = p / (1 + d)
	}
	return models.PriceSeries{Points: points}
}
