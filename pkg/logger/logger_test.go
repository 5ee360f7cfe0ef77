package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestLoggerWritesStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, zerolog.DebugLevel).With(String("component", "test"))

	l.Info("evaluated",
		String("instrument", "BBRI"),
		Int("score", 75),
		Float64("ratio", 2.5),
		Bool("thin", true),
		Duration("took", 1500*time.Millisecond),
		Strings("signals", []string{"A", "B"}),
		Error(errors.New("boom")),
	)

	var got map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid json %q: %v", buf.String(), err)
	}
	checks := map[string]interface{}{
		"component":  "test",
		"instrument": "BBRI",
		"score":      float64(75),
		"ratio":      2.5,
		"thin":       true,
		"took":       float64(1500),
		"signals":    "A, B",
		"error":      "boom",
		"message":    "evaluated",
		"level":      "info",
	}
	for k, want := range checks {
		if got[k] != want {
			t.Errorf("%s = %v, want %v", k, got[k], want)
		}
	}
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, zerolog.WarnLevel)
	l.Debug("hidden")
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected no output below warn, got %q", buf.String())
	}
	l.Warn("shown")
	if buf.Len() == 0 {
		t.Fatal("expected warn output")
	}
}

func TestNewRejectsBadLevel(t *testing.T) {
	if _, err := New(&Config{Level: "loud", Output: "stdout"}); err == nil {
		t.Fatal("expected error for invalid level")
	}
}
