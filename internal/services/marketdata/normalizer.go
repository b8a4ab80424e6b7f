package marketdata

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"TradeSignal/internal/domain/models"
)

const sourceChart = "chart"

// chartResponse is the Yahoo v8 chart payload. Arrays hold nulls for missing
// bars, hence the pointer elements.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// ValidateChart checks that body decodes as a chart payload. The relay
// fetcher uses it to reject proxy error pages and move on.
func ValidateChart(body []byte) error {
	var c chartResponse
	if err := json.Unmarshal(body, &c); err != nil {
		return err
	}
	if c.Chart.Result == nil && c.Chart.Error == nil {
		return errors.New("body has no chart object")
	}
	return nil
}

// NormalizeChart turns a raw chart body into an ascending, de-duplicated series.
// Bars missing any of open/high/low/close, or carrying zero or non-finite
// prices, are dropped. Missing or negative volume becomes 0.
func NormalizeChart(body []byte, symbol string) (models.PriceSeries, error) {
	var c chartResponse
	if err := json.Unmarshal(body, &c); err != nil {
		return models.PriceSeries{}, &models.MalformedResponseError{Source: sourceChart, Reason: err.Error()}
	}
	if e := c.Chart.Error; e != nil {
		return models.PriceSeries{}, &models.MalformedResponseError{
			Source: sourceChart,
			Reason: fmt.Sprintf("provider error %s: %s", e.Code, e.Description),
		}
	}
	if len(c.Chart.Result) == 0 {
		return models.PriceSeries{}, &models.MalformedResponseError{Source: sourceChart, Reason: "missing chart.result"}
	}
	res := c.Chart.Result[0]
	if len(res.Indicators.Quote) == 0 {
		return models.PriceSeries{}, &models.MalformedResponseError{Source: sourceChart, Reason: "missing indicators.quote"}
	}
	q := res.Indicators.Quote[0]

	points := make([]models.PricePoint, 0, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		o, okO := price(q.Open, i)
		h, okH := price(q.High, i)
		l, okL := price(q.Low, i)
		cl, okC := price(q.Close, i)
		if !okO || !okH || !okL || !okC {
			continue
		}
		points = append(points, models.PricePoint{
			Time:   time.Unix(ts, 0).UTC(),
			Open:   o,
			High:   h,
			Low:    l,
			Close:  cl,
			Volume: volume(q.Volume, i),
		})
	}

	points = sortDedup(points)
	if len(points) == 0 {
		return models.PriceSeries{}, models.ErrEmptySeries
	}
	return models.PriceSeries{Symbol: symbol, Points: points}, nil
}

func price(vals []*float64, i int) (float64, bool) {
	if i >= len(vals) || vals[i] == nil {
		return 0, false
	}
	v := *vals[i]
	if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func volume(vals []*float64, i int) float64 {
	if i >= len(vals) || vals[i] == nil {
		return 0
	}
	v := *vals[i]
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// sortDedup sorts by time and keeps the last occurrence of a repeated timestamp.
func sortDedup(points []models.PricePoint) []models.PricePoint {
	sort.SliceStable(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })
	out := points[:0]
	for _, p := range points {
		if n := len(out); n > 0 && out[n-1].Time.Equal(p.Time) {
			out[n-1] = p
			continue
		}
		out = append(out, p)
	}
	return out
}
