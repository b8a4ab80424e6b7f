package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fixedAllower struct {
	allow bool
	keys  []string
}

func (f *fixedAllower) Allow(key string, _, _ float64) bool {
	f.keys = append(f.keys, key)
	return f.allow
}

func serve(e *echo.Echo, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = "10.0.0.1:1234"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRateLimitRejects(t *testing.T) {
	e := echo.New()
	a := &fixedAllower{allow: false}
	e.Use(RateLimit(a, 1, 1))
	e.GET("/x", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	rec := serve(e, "/x")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if len(a.keys) != 1 || a.keys[0] != "10.0.0.1" {
		t.Fatalf("expected limiter keyed by remote ip, got %v", a.keys)
	}
}

func TestRateLimitDisabled(t *testing.T) {
	e := echo.New()
	e.Use(RateLimit(&fixedAllower{allow: false}, 0, 0))
	e.GET("/x", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	if rec := serve(e, "/x"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with limiter disabled, got %d", rec.Code)
	}
}

func TestRecoverReturns500(t *testing.T) {
	e := echo.New()
	e.Use(Recover(nil))
	e.GET("/boom", func(c echo.Context) error { panic("boom") })
	if rec := serve(e, "/boom"); rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	e := echo.New()
	m := NewHTTPMetrics(prometheus.NewRegistry())
	e.Use(m.Middleware(nil, 0))
	e.GET("/items/:id", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	serve(e, "/items/1")
	serve(e, "/items/2")

	if got := testutil.ToFloat64(m.requests.WithLabelValues("/items/:id", http.MethodGet, "204")); got != 2 {
		t.Fatalf("expected 2 requests on template label, got %v", got)
	}
}

func TestCORS(t *testing.T) {
	cases := []struct {
		name       string
		origins    []string
		method     string
		origin     string
		wantCode   int
		wantAllow  string
		wantMethod bool
	}{
		{"wildcard preflight", []string{"*"}, http.MethodOptions, "http://app.local", http.StatusNoContent, "*", true},
		{"listed origin is echoed", []string{"https://dash.example"}, http.MethodGet, "https://dash.example", http.StatusOK, "https://dash.example", false},
		{"unlisted origin gets no grant", []string{"https://dash.example"}, http.MethodGet, "https://evil.example", http.StatusOK, "", false},
		{"no origin header", []string{"*"}, http.MethodGet, "", http.StatusOK, "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			e.Use(CORS(CORSConfig{AllowOrigins: tc.origins, MaxAge: time.Minute}))
			e.GET("/x", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

			req := httptest.NewRequest(tc.method, "/x", nil)
			if tc.origin != "" {
				req.Header.Set(echo.HeaderOrigin, tc.origin)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			if rec.Code != tc.wantCode {
				t.Fatalf("status %d, want %d", rec.Code, tc.wantCode)
			}
			if got := rec.Header().Get(echo.HeaderAccessControlAllowOrigin); got != tc.wantAllow {
				t.Fatalf("allow-origin %q, want %q", got, tc.wantAllow)
			}
			methods := rec.Header().Get(echo.HeaderAccessControlAllowMethods)
			if tc.wantMethod && (!strings.Contains(methods, http.MethodGet) || strings.Contains(methods, http.MethodPost)) {
				t.Fatalf("preflight should advertise read methods only, got %q", methods)
			}
			if tc.wantMethod && rec.Header().Get(echo.HeaderAccessControlMaxAge) != "60" {
				t.Fatalf("missing max-age")
			}
		})
	}
}
