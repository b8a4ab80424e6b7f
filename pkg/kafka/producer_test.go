package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublishEncodesJSON(t *testing.T) {
	w := &fakeWriter{}
	reg := prometheus.NewRegistry()
	p := newProducer(w, "snappy", reg)

	payload := map[string]string{"symbol": "BTC-USD"}
	if err := p.Publish(context.Background(), "signals", []byte("BTC-USD"), payload); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(w.msgs))
	}
	m := w.msgs[0]
	if m.Topic != "signals" || string(m.Key) != "BTC-USD" || string(m.Value) != `{"symbol":"BTC-USD"}` {
		t.Fatalf("unexpected message %+v", m)
	}
	if got := testutil.ToFloat64(p.metrics.msgs.WithLabelValues("signals", "snappy", "ok")); got != 1 {
		t.Fatalf("expected ok counter 1, got %v", got)
	}
}

func TestPublishErrorCounted(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	p := newProducer(w, "gzip", prometheus.NewRegistry())

	if err := p.Publish(context.Background(), "signals", nil, "x"); err == nil {
		t.Fatalf("expected error")
	}
	if got := testutil.ToFloat64(p.metrics.errs.WithLabelValues("signals")); got != 1 {
		t.Fatalf("expected error counter 1, got %v", got)
	}
}

func TestPublishWithoutMetrics(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, "gzip", nil)
	if err := p.PublishBatch(context.Background(), "t", []Message{{Value: []byte("a")}, {Value: "b"}}); err != nil {
		t.Fatalf("publish batch: %v", err)
	}
	if len(w.msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(w.msgs))
	}
	if err := p.Close(); err != nil || !w.closed {
		t.Fatalf("close did not reach writer")
	}
}

func TestNewProducerRequiresBrokers(t *testing.T) {
	if _, err := NewProducer(WithRegisterer(nil)); err == nil {
		t.Fatalf("expected error without brokers")
	}
}
