package marketdata

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"TradeSignal/internal/domain/models"
)

const (
	sourceForex = "forex rate table"
	sourceSpot  = "spot price"
)

// coinIDs maps crypto tickers to spot-price provider ids.
var coinIDs = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"BNB":   "binancecoin",
	"XRP":   "ripple",
	"ADA":   "cardano",
	"SOL":   "solana",
	"DOGE":  "dogecoin",
	"DOT":   "polkadot",
	"AVAX":  "avalanche-2",
	"MATIC": "matic-network",
	"LINK":  "chainlink",
	"LTC":   "litecoin",
	"TRX":   "tron",
	"SHIB":  "shiba-inu",
}

// ForexPair splits "EURUSD=X" into ("EUR", "USD").
func ForexPair(symbol string) (base, quote string, err error) {
	s := strings.TrimSuffix(strings.ToUpper(symbol), "=X")
	if len(s) != 6 {
		return "", "", &models.UnsupportedAssetTypeError{Symbol: symbol, Class: models.AssetForex}
	}
	return s[:3], s[3:], nil
}

// CoinID resolves "BTC-USD" to its provider id and the vs currency ("usd").
func CoinID(symbol string) (id, vs string, err error) {
	s := strings.ToUpper(symbol)
	i := strings.LastIndex(s, "-")
	if i <= 0 {
		return "", "", &models.UnsupportedAssetTypeError{Symbol: symbol, Class: models.AssetCrypto}
	}
	id, ok := coinIDs[s[:i]]
	if !ok {
		return "", "", &models.UnsupportedAssetTypeError{Symbol: symbol, Class: models.AssetCrypto}
	}
	return id, strings.ToLower(s[i+1:]), nil
}

type rateTable struct {
	Result    string             `json:"result"`
	ErrorType string             `json:"error-type"`
	BaseCode  string             `json:"base_code"`
	Rates     map[string]float64 `json:"rates"`
}

// ExtractForexRate reads the base->quote rate from an exchange-rate table.
func ExtractForexRate(body []byte, base, quote string) (float64, error) {
	var t rateTable
	if err := json.Unmarshal(body, &t); err != nil {
		return 0, &models.MalformedResponseError{Source: sourceForex, Reason: err.Error()}
	}
	if t.Result != "" && t.Result != "success" {
		return 0, &models.MalformedResponseError{
			Source: sourceForex,
			Reason: fmt.Sprintf("provider result %q: %s", t.Result, t.ErrorType),
		}
	}
	if t.BaseCode != "" && !strings.EqualFold(t.BaseCode, base) {
		return 0, &models.MalformedResponseError{
			Source: sourceForex,
			Reason: fmt.Sprintf("table base %s, want %s", t.BaseCode, base),
		}
	}
	rate, ok := t.Rates[strings.ToUpper(quote)]
	if !ok {
		return 0, &models.MalformedResponseError{Source: sourceForex, Reason: "missing rate for " + quote}
	}
	return checkPrice(sourceForex, rate)
}

// ExtractSpotPrice reads {"<coin>":{"<vs>":price}}.
func ExtractSpotPrice(body []byte, coinID, vs string) (float64, error) {
	var m map[string]map[string]float64
	if err := json.Unmarshal(body, &m); err != nil {
		// Error payloads ({"status":{...}}) do not fit the map shape either.
		return 0, &models.MalformedResponseError{Source: sourceSpot, Reason: err.Error()}
	}
	coin, ok := m[coinID]
	if !ok {
		return 0, &models.MalformedResponseError{Source: sourceSpot, Reason: "missing coin " + coinID}
	}
	p, ok := coin[strings.ToLower(vs)]
	if !ok {
		return 0, &models.MalformedResponseError{Source: sourceSpot, Reason: "missing currency " + vs}
	}
	return checkPrice(sourceSpot, p)
}

func checkPrice(source string, p float64) (float64, error) {
	if p <= 0 || math.IsNaN(p) || math.IsInf(p, 0) {
		return 0, &models.MalformedResponseError{Source: source, Reason: fmt.Sprintf("invalid price %v", p)}
	}
	return p, nil
}
