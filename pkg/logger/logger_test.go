package logger

import (
	"errors"
	"testing"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New(&Config{Level: "loud", Output: "stdout"}); err == nil {
		t.Fatalf("expected error for invalid level")
	}
}

func TestFieldKeyValues(t *testing.T) {
	k, v := Float64("price", 1.25).GetKeyValue()
	if k != "price" || v.(float64) != 1.25 {
		t.Fatalf("unexpected float field %s=%v", k, v)
	}
	k, v = Error(errors.New("boom")).GetKeyValue()
	if k != "error" || v.(string) != "boom" {
		t.Fatalf("unexpected error field %s=%v", k, v)
	}
	if _, v = Error(nil).GetKeyValue(); v != nil {
		t.Fatalf("nil error should map to nil value")
	}
}

func TestNopLoggerDoesNotPanic(t *testing.T) {
	l := NewNop().With(String("component", "test"))
	l.Info("hello", Int("n", 1))
	l.Error("bad", Error(errors.New("x")))
}
