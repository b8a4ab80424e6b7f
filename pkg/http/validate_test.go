package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

type quoteQuery struct {
	Symbol    string `query:"symbol" validate:"required,max=32,symbol"`
	Timeframe string `query:"timeframe" default:"1d" validate:"oneof=1h 4h 1d"`
	Limit     int    `query:"limit" default:"50" validate:"gte=1,lte=500"`
}

func contextFor(target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	rec := httptest.NewRecorder()
	return e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), rec), rec
}

func TestBindQuery(t *testing.T) {
	cases := []struct {
		target   string
		wantCode string
	}{
		{"/?symbol=EURUSD=X", ""},
		{"/?symbol=%5EGSPC&timeframe=4h", ""},
		{"/?symbol=BRK.B&limit=500", ""},
		{"/?symbol=btc-usd", ""},
		{"/", "ERR_REQUIRED"},
		{"/?symbol=EUR%20USD", "ERR_SYMBOL"},
		{"/?symbol=%3Cscript%3E", "ERR_SYMBOL"},
		{"/?symbol=AAPL&timeframe=5m", "ERR_ONEOF"},
		{"/?symbol=AAPL&limit=501", "ERR_LTE"},
		{"/?symbol=AAPL&limit=abc", "ERR_BIND"},
	}
	for _, tc := range cases {
		t.Run(tc.target, func(t *testing.T) {
			c, _ := contextFor(tc.target)
			q := &quoteQuery{}
			errs := BindQuery(c, q)
			if tc.wantCode == "" {
				if errs != nil {
					t.Fatalf("unexpected errors %+v", errs)
				}
				if q.Timeframe == "" || q.Limit == 0 {
					t.Fatalf("defaults not applied: %+v", q)
				}
				return
			}
			if len(errs) == 0 || errs[0].Code != tc.wantCode {
				t.Fatalf("got %+v, want %s", errs, tc.wantCode)
			}
		})
	}
}

func TestAppErrorResponse(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		status   int
		contains []string
		hidden   string
	}{
		{
			name:     "signal unavailable",
			err:      SignalUnavailableError("SYNTHETIC_FALLBACK", "FETCH_EXHAUSTED", map[string]string{"PRIMARY": "down"}, errors.New("boom")),
			status:   http.StatusServiceUnavailable,
			contains: []string{CodeSignalUnavailable, `"tier":"SYNTHETIC_FALLBACK"`, `"PRIMARY":"down"`},
			hidden:   "boom",
		},
		{
			name:     "insufficient data",
			err:      InsufficientDataError("AAPL", 12, 20),
			status:   http.StatusUnprocessableEntity,
			contains: []string{CodeInsufficientData, `"need":20`},
		},
		{
			name:     "no symbols",
			err:      NoSymbolsError("indices"),
			status:   http.StatusNotFound,
			contains: []string{CodeNoSymbols, `"asset_class":"indices"`},
		},
		{
			name:     "plain error is hidden",
			err:      errors.New("dial tcp 10.0.0.3:9000: refused"),
			status:   http.StatusInternalServerError,
			contains: []string{CodeInternal},
			hidden:   "10.0.0.3",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := contextFor("/")
			if err := AppErrorResponse(c, tc.err); err != nil {
				t.Fatalf("write: %v", err)
			}
			if rec.Code != tc.status {
				t.Fatalf("status %d, want %d", rec.Code, tc.status)
			}
			body := rec.Body.String()
			for _, want := range tc.contains {
				if !strings.Contains(body, want) {
					t.Fatalf("body %s lacks %s", body, want)
				}
			}
			if tc.hidden != "" && strings.Contains(body, tc.hidden) {
				t.Fatalf("body leaks %q: %s", tc.hidden, body)
			}
		})
	}
}

func TestCachedResponseHeader(t *testing.T) {
	c, rec := contextFor("/")
	if err := CachedResponse(c, 15, "ok"); err != nil {
		t.Fatalf("write: %v", err)
	}
	if rec.Header().Get(echo.HeaderCacheControl) != "private, max-age=15" {
		t.Fatalf("unexpected cache header %q", rec.Header().Get(echo.HeaderCacheControl))
	}
}
