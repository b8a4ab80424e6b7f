package models

import "time"

// IndicatorZone labels where an oscillator or band reading sits.
type IndicatorZone string

const (
	ZoneOverbought IndicatorZone = "OVERBOUGHT"
	ZoneOversold   IndicatorZone = "OVERSOLD"
	ZoneNeutral    IndicatorZone = "NEUTRAL"
	ZoneBullish    IndicatorZone = "BULLISH"
	ZoneBearish    IndicatorZone = "BEARISH"
	ZoneAboveBand  IndicatorZone = "ABOVE_UPPER"
	ZoneBelowBand  IndicatorZone = "BELOW_LOWER"
	ZoneInsideBand IndicatorZone = "INSIDE"
)

type RSIReading struct {
	Period int           `json:"period"`
	Value  float64       `json:"value"`
	Zone   IndicatorZone `json:"zone"`
}

type MACDReading struct {
	Fast      int           `json:"fast"`
	Slow      int           `json:"slow"`
	Signal    int           `json:"signal"`
	MACD      float64       `json:"macd"`
	SignalVal float64       `json:"signal_value"`
	Histogram float64       `json:"histogram"`
	Bias      IndicatorZone `json:"bias"`
}

type BollingerReading struct {
	Period   int           `json:"period"`
	StdDev   float64       `json:"std_dev"`
	Upper    float64       `json:"upper"`
	Middle   float64       `json:"middle"`
	Lower    float64       `json:"lower"`
	Position IndicatorZone `json:"position"`
}

// IndicatorReport holds the readings at the latest bar. A reading whose
// lookback exceeds the series is omitted. Summary carries one display line
// per reading.
type IndicatorReport struct {
	Symbol      string            `json:"symbol"`
	Timeframe   string            `json:"timeframe"`
	Bars        int               `json:"bars"`
	LatestClose float64           `json:"latest_close"`
	AsOf        time.Time         `json:"as_of"`
	RSI         *RSIReading       `json:"rsi,omitempty"`
	MACD        *MACDReading      `json:"macd,omitempty"`
	Bollinger   *BollingerReading `json:"bollinger,omitempty"`
	Summary     map[string]string `json:"summary"`
}

// PriceSource names where a latest price came from.
type PriceSource string

const (
	PriceFromQuote   PriceSource = "QUOTE"
	PriceFromHistory PriceSource = "HISTORY"
)

// PriceQuote is a single latest price.
type PriceQuote struct {
	Symbol string      `json:"symbol"`
	Price  float64     `json:"price"`
	Source PriceSource `json:"source"`
	AsOf   time.Time   `json:"as_of"`
}
