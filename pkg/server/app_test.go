package server

import (
	"context"
	"testing"
	"time"

	"TradeSignal/internal/domain/models"
	"TradeSignal/pkg/config"
	xhttp "TradeSignal/pkg/http"
)

type closeTracker struct{ closed bool }

func (c *closeTracker) Save(context.Context, *models.Signal) error { return nil }
func (c *closeTracker) Recent(context.Context, string, int) ([]models.Signal, error) {
	return nil, nil
}
func (c *closeTracker) Health(context.Context) error                 { return nil }
func (c *closeTracker) Publish(context.Context, *models.Signal) error { return nil }
func (c *closeTracker) Close() error {
	c.closed = true
	return nil
}

func TestRunContextShutsDown(t *testing.T) {
	cfg, err := config.Parse([]byte("environment: test\n"))
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	cfg.Server.ShutdownTimeout = time.Second

	store, pub := &closeTracker{}, &closeTracker{}
	app := New(cfg, xhttp.NewServer(nil, xhttp.WithHost("127.0.0.1"), xhttp.WithPort(0)), nil, store, pub, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.RunContext(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("app did not stop")
	}
	if !store.closed || !pub.closed {
		t.Fatalf("store and publisher should be closed on shutdown")
	}
}
