package api

import (
	"context"
	"errors"
	"sort"

	models "TradeSignal/internal/domain/models"
	domrepo "TradeSignal/internal/domain/repository"
	xhttp "TradeSignal/pkg/http"
	xlogger "TradeSignal/pkg/logger"

	"github.com/labstack/echo/v4"
)

const (
	signalMaxAge = 15
	priceMaxAge  = 5
)

// SignalService is the signal use case as seen by HTTP.
type SignalService interface {
	Generate(ctx context.Context, req models.SignalRequest) (*models.Signal, error)
	History(ctx context.Context, symbol string, limit int) ([]models.Signal, error)
	Health(ctx context.Context) error
}

// ScanService runs the cascade over a symbol list.
type ScanService interface {
	Scan(ctx context.Context, symbols []string, timeframe string) *models.ScanResult
}

// MarketService serves latest prices and indicator readings.
type MarketService interface {
	LatestPrice(ctx context.Context, symbol string) (*models.PriceQuote, error)
	Indicators(ctx context.Context, symbol, timeframe string) (*models.IndicatorReport, error)
}

// SignalsEchoHandler exposes the signal cascade over Echo.
type SignalsEchoHandler struct {
	logger  *xlogger.Logger
	signals SignalService
	scanner ScanService
	market  MarketService
	assets  map[string][]string
}

func NewSignalsEchoHandler(logger *xlogger.Logger, signals SignalService, scanner ScanService, market MarketService, assets map[string][]string) *SignalsEchoHandler {
	if logger == nil {
		logger = xlogger.NewNop()
	}
	return &SignalsEchoHandler{logger: logger, signals: signals, scanner: scanner, market: market, assets: assets}
}

func (h *SignalsEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/signal", h.Signal)
	g.GET("/scan", h.Scan)
	g.GET("/history", h.History)
	g.GET("/price", h.Price)
	g.GET("/indicators", h.Indicators)
	g.GET("/assets", h.Assets)
	g.GET("/health", h.Health)
}

func (h *SignalsEchoHandler) Signal(c echo.Context) error {
	req := &models.SignalRequest{}
	if verr := xhttp.BindQuery(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	req.Timeframe = string(domrepo.NormalizeTimeframe(req.Timeframe))

	sig, err := h.signals.Generate(c.Request().Context(), *req)
	if err != nil {
		h.logger.Error("signal usecase error",
			xlogger.String("symbol", req.Symbol),
			xlogger.Error(err),
		)
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return xhttp.CachedResponse(c, signalMaxAge, sig)
}

func (h *SignalsEchoHandler) Scan(c echo.Context) error {
	req := &models.ScanRequest{}
	if verr := xhttp.BindQuery(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	symbols := h.assets[req.AssetClass]
	if len(symbols) == 0 {
		return xhttp.AppErrorResponse(c, xhttp.NoSymbolsError(req.AssetClass))
	}

	res := h.scanner.Scan(c.Request().Context(), symbols, string(domrepo.NormalizeTimeframe(req.Timeframe)))
	res.AssetClass = req.AssetClass
	return xhttp.SuccessResponse(c, res)
}

func (h *SignalsEchoHandler) History(c echo.Context) error {
	req := &models.HistoryRequest{}
	if verr := xhttp.BindQuery(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	rows, err := h.signals.History(c.Request().Context(), req.Symbol, req.Limit)
	if err != nil {
		h.logger.Error("history usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError(err))
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func (h *SignalsEchoHandler) Price(c echo.Context) error {
	req := &models.PriceRequest{}
	if verr := xhttp.BindQuery(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	q, err := h.market.LatestPrice(c.Request().Context(), req.Symbol)
	if err != nil {
		h.logger.Warn("latest price failed",
			xlogger.String("symbol", req.Symbol),
			xlogger.Error(err),
		)
		return xhttp.AppErrorResponse(c, xhttp.PriceUnavailableError(req.Symbol, err))
	}
	return xhttp.CachedResponse(c, priceMaxAge, q)
}

func (h *SignalsEchoHandler) Indicators(c echo.Context) error {
	req := &models.IndicatorsRequest{}
	if verr := xhttp.BindQuery(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	rep, err := h.market.Indicators(c.Request().Context(), req.Symbol, req.Timeframe)
	if err != nil {
		h.logger.Warn("indicators failed",
			xlogger.String("symbol", req.Symbol),
			xlogger.Error(err),
		)
		var ie *models.InsufficientDataError
		if errors.As(err, &ie) {
			return xhttp.AppErrorResponse(c, xhttp.InsufficientDataError(req.Symbol, ie.Have, ie.Need))
		}
		return xhttp.AppErrorResponse(c, xhttp.HistoryUnavailableError(req.Symbol, string(models.KindOf(err)), err))
	}
	return xhttp.SuccessResponse(c, rep)
}

func (h *SignalsEchoHandler) Assets(c echo.Context) error {
	classes := make([]string, 0, len(h.assets))
	for k := range h.assets {
		classes = append(classes, k)
	}
	sort.Strings(classes)
	out := make(map[string][]string, len(classes))
	for _, k := range classes {
		out[k] = h.assets[k]
	}
	return xhttp.SuccessResponse(c, out)
}

func (h *SignalsEchoHandler) Health(c echo.Context) error {
	if err := h.signals.Health(c.Request().Context()); err != nil {
		h.logger.Warn("health check failed", xlogger.Error(err))
		return xhttp.ServiceUnavailableResponse(c, map[string]string{"store": "unavailable"})
	}
	return xhttp.SuccessResponse(c, map[string]string{"store": "ok"})
}

// toAppError maps a cascade failure to a 503 carrying the last tier and kind.
func toAppError(err error) error {
	var ce *models.CascadeError
	if errors.As(err, &ce) {
		attempts := make(map[string]string, len(ce.Attempts))
		for tier, msg := range ce.Attempts {
			attempts[string(tier)] = msg
		}
		return xhttp.SignalUnavailableError(string(ce.Tier), string(ce.Kind), attempts, err)
	}
	return err
}
