package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"TradeSignal/internal/domain/models"
)

func TestClampLimit(t *testing.T) {
	cases := map[int]int{-1: defaultRecentLimit, 0: defaultRecentLimit, 5: 5, 10000: maxRecentLimit}
	for in, want := range cases {
		if got := ClampLimit(in); got != want {
			t.Fatalf("ClampLimit(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestMemoryStoreRecent(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore(3)
	for _, sym := range []string{"A", "B", "A", "C"} {
		if err := m.Save(ctx, &models.Signal{Symbol: sym}); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	all, _ := m.Recent(ctx, "", 10)
	if len(all) != 3 || all[0].Symbol != "C" || all[2].Symbol != "B" {
		t.Fatalf("unexpected recent %+v", all)
	}
	onlyA, _ := m.Recent(ctx, "A", 10)
	if len(onlyA) != 1 {
		t.Fatalf("expected one A after eviction, got %d", len(onlyA))
	}
}

type recordingPublisher struct {
	got    []string
	err    error
	closed bool
}

func (r *recordingPublisher) Publish(_ context.Context, s *models.Signal) error {
	r.got = append(r.got, s.Symbol)
	return r.err
}

func (r *recordingPublisher) Close() error {
	r.closed = true
	return nil
}

func TestFanoutPublisher(t *testing.T) {
	ok := &recordingPublisher{}
	bad := &recordingPublisher{err: errors.New("down")}
	f := NewFanoutPublisher(ok, nil, bad)

	err := f.Publish(context.Background(), &models.Signal{Symbol: "EURUSD=X"})
	if err == nil || !errors.Is(err, bad.err) {
		t.Fatalf("expected joined error, got %v", err)
	}
	if len(ok.got) != 1 || len(bad.got) != 1 {
		t.Fatalf("every target should receive the signal")
	}
	_ = f.Close()
	if !ok.closed || !bad.closed {
		t.Fatalf("close should reach every target")
	}
}

type fakeProducer struct {
	topic string
	key   []byte
	value interface{}
}

func (f *fakeProducer) Publish(_ context.Context, topic string, key []byte, value interface{}) error {
	f.topic, f.key, f.value = topic, key, value
	return nil
}

func (f *fakeProducer) Close() error { return nil }

func TestKafkaSignalPublisherKeysBySymbol(t *testing.T) {
	fp := &fakeProducer{}
	k := NewKafkaSignalPublisher(fp, "trade-signals")
	sig := &models.Signal{Symbol: "BTC-USD", Kind: models.SignalBuy}
	if err := k.Publish(context.Background(), sig); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if fp.topic != "trade-signals" || string(fp.key) != "BTC-USD" {
		t.Fatalf("unexpected topic/key %s/%s", fp.topic, fp.key)
	}
	b, _ := json.Marshal(fp.value)
	if len(b) == 0 || fp.value != sig {
		t.Fatalf("value should be the signal itself")
	}
}

func TestNullFloatRoundTrip(t *testing.T) {
	if nullFloat(nil).Valid {
		t.Fatalf("nil should be NULL")
	}
	v := nullFloat(models.Float(1.5))
	if p := floatPtr(v); p == nil || *p != 1.5 {
		t.Fatalf("unexpected round trip %v", p)
	}
}
