package primary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"TradeSignal/internal/domain/models"
	"TradeSignal/internal/domain/repository"
	"TradeSignal/internal/services/analysis"
	xhttp "TradeSignal/pkg/http"
	xutil "TradeSignal/pkg/util"
)

const serviceName = "primary"

// Config locates the inference endpoint.
type Config struct {
	BaseURL string
	Path    string
	Timeout time.Duration
}

// Client calls the external ML inference service.
type Client struct {
	baseURL string
	path    string
	client  *xhttp.Client
	now     func() time.Time
}

// NewClient builds a client with the configured timeout.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	path := cfg.Path
	if path == "" {
		path = "/api/signal"
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		path:    path,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
		now:     time.Now,
	}
}

type prediction struct {
	Signal        string          `json:"signal"`
	Confidence    *float64        `json:"confidence"`
	EntryPrice    *float64        `json:"entry_price"`
	LatestPrice   *float64        `json:"latest_price"`
	ExitPrice     *float64        `json:"exit_price"`
	StopLoss      *float64        `json:"stop_loss"`
	StopLossValue string          `json:"stop_loss_value"`
	Timestamp     json.RawMessage `json:"timestamp"`
	Error         string          `json:"error"`
}

// Predict asks the service for a signal. Any non-2xx answer is an
// *models.UpstreamError; a body without a valid signal or confidence is a
// *models.MalformedResponseError.
func (c *Client) Predict(ctx context.Context, symbol string, tf repository.Timeframe, period string) (*models.Signal, error) {
	if c.baseURL == "" {
		return nil, &models.UpstreamError{Service: serviceName, Message: "base url not configured"}
	}

	var body []byte
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + c.path,
		Headers: map[string]string{
			"Accept": "application/json",
		},
		QueryParams: map[string][]string{
			"symbol":    {symbol},
			"timeframe": {string(tf)},
			"period":    {period},
		},
	}, &body)
	if err != nil {
		var se *xhttp.StatusError
		if errors.As(err, &se) {
			return nil, &models.UpstreamError{Service: serviceName, Status: se.Code, Message: errorMessage(se.Body)}
		}
		return nil, fmt.Errorf("primary request: %w", err)
	}

	var p prediction
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, &models.MalformedResponseError{Source: serviceName, Reason: err.Error()}
	}
	return c.toSignal(symbol, tf, p)
}

func (c *Client) toSignal(symbol string, tf repository.Timeframe, p prediction) (*models.Signal, error) {
	if p.Error != "" {
		return nil, &models.MalformedResponseError{Source: serviceName, Reason: p.Error}
	}
	kind, ok := models.ParseSignalKind(strings.ToUpper(p.Signal))
	if !ok {
		return nil, &models.MalformedResponseError{Source: serviceName, Reason: fmt.Sprintf("invalid signal %q", p.Signal)}
	}
	if p.Confidence == nil || *p.Confidence < 0 || *p.Confidence > 1 {
		return nil, &models.MalformedResponseError{Source: serviceName, Reason: "confidence missing or outside [0,1]"}
	}
	price := p.EntryPrice
	if price == nil {
		price = p.LatestPrice
	}
	if price == nil || *price <= 0 {
		return nil, &models.MalformedResponseError{Source: serviceName, Reason: "missing price"}
	}

	s := &models.Signal{
		Symbol:        symbol,
		Kind:          kind,
		Reason:        "model prediction",
		Price:         *price,
		Confidence:    p.Confidence,
		Timeframe:     string(tf),
		Provenance:    models.ProvenancePrimary,
		GeneratedAt:   c.timestamp(p.Timestamp),
		EntryPrice:    p.EntryPrice,
		ExitPrice:     p.ExitPrice,
		StopLoss:      p.StopLoss,
		StopLossValue: p.StopLossValue,
	}
	if s.StopLossValue == "" && s.StopLoss != nil {
		s.StopLossValue = analysis.StopLossValue(symbol, s.Price, *s.StopLoss)
	}
	return s, nil
}

// timestamp accepts a string or numeric timestamp and falls back to now.
func (c *Client) timestamp(raw json.RawMessage) time.Time {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	return xutil.ParseTimeDefault(s, c.now().UTC())
}

func errorMessage(body string) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal([]byte(body), &e) == nil && e.Error != "" {
		return e.Error
	}
	return strings.TrimSpace(body)
}
