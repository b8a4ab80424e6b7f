package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"TradeSignal/internal/domain/models"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHubBroadcast(t *testing.T) {
	hub := NewHub(nil)
	e := echo.New()
	hub.RegisterRoutes(e)
	srv := httptest.NewServer(e)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/signals"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	waitFor(t, func() bool { return hub.Len() == 1 })

	sig := &models.Signal{Symbol: "ETH-USD", Kind: models.SignalSell, Provenance: models.ProvenanceSynthetic}
	if err := hub.Publish(context.Background(), sig); err != nil {
		t.Fatalf("publish: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var ev Event
	if err := json.Unmarshal(msg, &ev); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ev.Event != "signal" || ev.Payload == nil || ev.Payload.Symbol != "ETH-USD" {
		t.Fatalf("unexpected event %s", msg)
	}

	conn.Close()
	waitFor(t, func() bool { return hub.Len() == 0 })
}

func TestHubPublishWithoutSubscribers(t *testing.T) {
	hub := NewHub(nil)
	if err := hub.Publish(context.Background(), &models.Signal{Symbol: "X"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := hub.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
