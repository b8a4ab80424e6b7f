package http

import (
	"fmt"
	"net/http"
)

// Error codes returned in the response envelope.
const (
	CodeSignalUnavailable  = "ERR_SIGNAL_UNAVAILABLE"
	CodePriceUnavailable   = "ERR_PRICE_UNAVAILABLE"
	CodeHistoryUnavailable = "ERR_HISTORY_UNAVAILABLE"
	CodeInsufficientData   = "ERR_INSUFFICIENT_DATA"
	CodeNoSymbols          = "ERR_NO_SYMBOLS"
	CodeInternal           = "ERR_INTERNAL"
)

// AppError is an API failure carried in the envelope's data array.
type AppError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Field   string                 `json:"field,omitempty"`
	Params  map[string]interface{} `json:"params,omitempty"`
	Status  int                    `json:"-"`
	Err     error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code, field, message string, status int) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Field:   field,
		Status:  status,
	}
}

// WithParam sets a single error param.
func (e *AppError) WithParam(key string, value interface{}) *AppError {
	if e.Params == nil {
		e.Params = make(map[string]interface{})
	}
	e.Params[key] = value
	return e
}

// WithError keeps err for logs; it is never serialized.
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

// SignalUnavailableError reports that every cascade tier failed. tier and kind
// describe the last failure; attempts maps each tier to its error message.
func SignalUnavailableError(tier, kind string, attempts map[string]string, err error) *AppError {
	return NewAppError(CodeSignalUnavailable, "", "no tier could produce a signal", http.StatusServiceUnavailable).
		WithParam("tier", tier).
		WithParam("kind", kind).
		WithParam("attempts", attempts).
		WithError(err)
}

// PriceUnavailableError reports that neither spot nor chart data priced symbol.
func PriceUnavailableError(symbol string, err error) *AppError {
	return NewAppError(CodePriceUnavailable, "symbol", "could not fetch latest price", http.StatusServiceUnavailable).
		WithParam("symbol", symbol).
		WithError(err)
}

// HistoryUnavailableError reports a chart fetch failure; kind is the
// classified cause.
func HistoryUnavailableError(symbol, kind string, err error) *AppError {
	return NewAppError(CodeHistoryUnavailable, "symbol", "could not fetch price history", http.StatusServiceUnavailable).
		WithParam("symbol", symbol).
		WithParam("kind", kind).
		WithError(err)
}

// InsufficientDataError reports a history too short for the requested analysis.
func InsufficientDataError(symbol string, have, need int) *AppError {
	return NewAppError(CodeInsufficientData, "symbol", "not enough price history", http.StatusUnprocessableEntity).
		WithParam("symbol", symbol).
		WithParam("have", have).
		WithParam("need", need)
}

// NoSymbolsError reports an asset class with an empty watchlist.
func NoSymbolsError(assetClass string) *AppError {
	return NewAppError(CodeNoSymbols, "asset_class", "no symbols configured for asset class", http.StatusNotFound).
		WithParam("asset_class", assetClass)
}

// InternalError hides err behind a generic 500.
func InternalError(err error) *AppError {
	return NewAppError(CodeInternal, "", "something went wrong", http.StatusInternalServerError).WithError(err)
}
