package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestClientSendAndParse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/json":
			if r.Header.Get("User-Agent") != "tradesignal-test" || r.URL.Query().Get("symbol") != "EURUSD=X" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			_, _ = w.Write([]byte(`{"price":1.08}`))
		case "/raw":
			_, _ = w.Write([]byte("<html>"))
		default:
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(strings.Repeat("x", 10000)))
		}
	}))
	defer srv.Close()

	c := NewClient(WithTimeout(time.Second), WithUserAgent("tradesignal-test"))
	ctx := context.Background()

	var out struct {
		Price float64 `json:"price"`
	}
	err := c.SendAndParse(ctx, &RequestOptions{
		URL:         srv.URL + "/json",
		QueryParams: map[string][]string{"symbol": {"EURUSD=X"}},
	}, &out)
	if err != nil || out.Price != 1.08 {
		t.Fatalf("got %+v err=%v", out, err)
	}

	var raw []byte
	if err := c.SendAndParse(ctx, &RequestOptions{Method: MethodGet, URL: srv.URL + "/raw"}, &raw); err != nil || string(raw) != "<html>" {
		t.Fatalf("raw body %q err=%v", raw, err)
	}
	if err := c.SendAndParse(ctx, &RequestOptions{URL: srv.URL + "/raw"}, &out); err == nil {
		t.Fatalf("html should not decode as json")
	}

	err = c.SendAndParse(ctx, &RequestOptions{URL: srv.URL + "/down"}, nil)
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusBadGateway || len(se.Body) != maxErrorBytes {
		t.Fatalf("expected truncated 502 status error, got %v", err)
	}
}
