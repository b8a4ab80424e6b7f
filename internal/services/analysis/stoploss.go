package analysis

import (
	"fmt"
	"math"
	"strings"

	"TradeSignal/internal/domain/models"
)

var currencySymbols = map[string]string{
	"USD": "$",
	"JPY": "¥",
	"GBP": "£",
	"EUR": "€",
	"CHF": "Fr.",
}

// StopLossValue formats the money at risk between entry and stop for one
// position: forex pairs per 1000 units in the quote currency, crypto per
// 0.01 coin, everything else per share.
func StopLossValue(symbol string, entry, stop float64) string {
	diff := math.Abs(entry - stop)
	switch models.ClassifyAsset(symbol) {
	case models.AssetForex:
		s := strings.ToUpper(symbol)
		quote := ""
		if len(s) >= 6 {
			quote = s[3:6]
		}
		cur, ok := currencySymbols[quote]
		if !ok {
			cur = quote + " "
		}
		return fmt.Sprintf("(%s%s)", cur, formatMoney(diff*1000))
	case models.AssetCrypto:
		return fmt.Sprintf("(~$%s)", formatMoney(diff*0.01))
	default:
		return fmt.Sprintf("(~$%s)", formatMoney(diff))
	}
}

// formatMoney renders v with two decimals and thousands separators.
func formatMoney(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	intPart, frac, _ := strings.Cut(s, ".")
	neg := strings.HasPrefix(intPart, "-")
	intPart = strings.TrimPrefix(intPart, "-")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String() + "." + frac
	if neg {
		out = "-" + out
	}
	return out
}
