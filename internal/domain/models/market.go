package models

import (
	"strings"
	"time"
)

// PricePoint represents a single OHLCV bar.
type PricePoint struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// PriceSeries is ordered by strictly increasing Time. It is built once by the
// normalizer or the synthetic back-fill and only sliced afterwards.
type PriceSeries struct {
	Symbol string
	Points []PricePoint
}

// Len returns the number of bars.
func (s PriceSeries) Len() int { return len(s.Points) }

// Last returns the most recent bar. ok is false for an empty series.
func (s PriceSeries) Last() (PricePoint, bool) {
	if len(s.Points) == 0 {
		return PricePoint{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// Tail returns the trailing n bars (or all of them when n >= Len).
func (s PriceSeries) Tail(n int) PriceSeries {
	if n >= len(s.Points) {
		return s
	}
	if n < 0 {
		n = 0
	}
	return PriceSeries{Symbol: s.Symbol, Points: s.Points[len(s.Points)-n:]}
}

// Head returns the series without its trailing n bars.
func (s PriceSeries) Head(n int) PriceSeries {
	if n <= 0 {
		return s
	}
	if n >= len(s.Points) {
		return PriceSeries{Symbol: s.Symbol}
	}
	return PriceSeries{Symbol: s.Symbol, Points: s.Points[:len(s.Points)-n]}
}

// Closes extracts closing prices in series order.
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Points))
	for i, p := range s.Points {
		closes[i] = p.Close
	}
	return closes
}

// RegressionChannel is a linear price channel fitted over a trailing window.
// Center is the fitted value at the most recent bar of the window.
type RegressionChannel struct {
	Slope         float64 `json:"slope"`
	Intercept     float64 `json:"intercept"`
	MaxDeviation  float64 `json:"max_deviation"`
	IsUpwardSlope bool    `json:"is_upward_slope"`
	Center        float64 `json:"center"`
	UpperBound    float64 `json:"upper_bound"`
	LowerBound    float64 `json:"lower_bound"`
	HeadReference float64 `json:"head_reference"`
}

// Width is the distance between the channel bounds.
func (c RegressionChannel) Width() float64 { return c.UpperBound - c.LowerBound }

// Relay is one upstream relay endpoint. A request for target is sent to
// Prefix+target, or Prefix+QueryEscape(target) when Encode is set.
// An empty Prefix means a direct request.
type Relay struct {
	Name   string `yaml:"name" json:"name" validate:"required"`
	Prefix string `yaml:"prefix" json:"prefix"`
	Encode bool   `yaml:"encode" json:"encode"`
}

// AssetClass groups symbols by the provider able to price them.
type AssetClass string

const (
	AssetForex   AssetClass = "forex"
	AssetCrypto  AssetClass = "crypto"
	AssetStocks  AssetClass = "stocks"
	AssetIndices AssetClass = "indices"
)

// ClassifyAsset infers the asset class from Yahoo-style ticker conventions.
func ClassifyAsset(symbol string) AssetClass {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	switch {
	case strings.HasSuffix(s, "=X"):
		return AssetForex
	case strings.HasSuffix(s, "-USD"):
		return AssetCrypto
	case strings.HasPrefix(s, "^") || strings.Contains(s, ":^"):
		return AssetIndices
	default:
		return AssetStocks
	}
}
