package shared

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLogger(t *testing.T) {
	t.Run("writes to the provided writer", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger := NewLogger(buf)

		logger.Info("hello")

		if !strings.Contains(buf.String(), "hello") {
			t.Errorf("expected log output to contain message, got %q", buf.String())
		}
	})

	t.Run("nil writer defaults to stderr", func(t *testing.T) {
		logger := NewLogger(nil)
		if logger == nil {
			t.Fatal("expected logger")
		}
	})

	t.Run("WithLogger attaches key-value pairs", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger := WithLogger(NewLogger(buf), "component", "sync")

		logger.Info("started")

		if !strings.Contains(buf.String(), "sync") {
			t.Errorf("expected log output to contain component, got %q", buf.String())
		}
	})
}

func TestGenerateID(t *testing.T) {
	a := GenerateID()
	b := GenerateID()

	if a == b {
		t.Error("expected unique IDs")
	}
	if len(a) != 36 {
		t.Errorf("expected UUID string length 36, got %d", len(a))
	}
}

func TestMarshalJSON(t *testing.T) {
	t.Run("compact", func(t *testing.T) {
		out, err := MarshalJSON(map[string]int{"a": 1}, false)
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		if string(out) != `{"a":1}` {
			t.Errorf("unexpected output: %s", out)
		}
	})

	t.Run("pretty", func(t *testing.T) {
		out, err := MarshalJSON(map[string]int{"a": 1}, true)
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		if !strings.Contains(string(out), "\n  ") {
			t.Errorf("expected indentation: %s", out)
		}
	})

	t.Run("unmarshalable value errors", func(t *testing.T) {
		if _, err := MarshalJSON(make(chan int), false); err == nil {
			t.Error("expected error for channel value")
		}
	})
}

func TestFormatSats(t *testing.T) {
	tc := []struct {
		msat int64
		want string
	}{
		{1000, "1 sats"},
		{21000000, "21000 sats"},
		{999, "0 sats"},
	}

	for _, tt := range tc {
		if got := FormatSats(tt.msat); got != tt.want {
			t.Errorf("FormatSats(%d) = %q, want %q", tt.msat, got, tt.want)
		}
	}
}
