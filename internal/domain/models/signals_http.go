package models

// Requests for signal HTTP endpoints. Defined in domain for consistency and reuse.

type SignalRequest struct {
	Symbol    string `query:"symbol" json:"symbol" validate:"required,max=32,symbol"`
	Timeframe string `query:"timeframe" json:"timeframe" default:"1d" validate:"oneof=1h 4h 1d"`
	Period    string `query:"period" json:"period" default:"90d" validate:"max=8"`
}

type ScanRequest struct {
	AssetClass string `query:"asset_class" json:"asset_class" default:"forex" validate:"oneof=forex crypto stocks indices"`
	Timeframe  string `query:"timeframe" json:"timeframe" default:"1d" validate:"oneof=1h 4h 1d"`
}

type HistoryRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required,max=32,symbol"`
	Limit  int    `query:"limit" json:"limit" default:"50" validate:"gte=1,lte=500"`
}

type PriceRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required,max=32,symbol"`
}

type IndicatorsRequest struct {
	Symbol    string `query:"symbol" json:"symbol" validate:"required,max=32,symbol"`
	Timeframe string `query:"timeframe" json:"timeframe" default:"1d" validate:"oneof=1h 4h 1d"`
}
