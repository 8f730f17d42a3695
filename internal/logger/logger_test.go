package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "warn", "json")
	l.Info("dropped")
	l.Warn("kept", "key", "value")
	out := strings.TrimSpace(buf.String())
	if strings.Contains(out, "dropped") {
		t.Fatalf("info should be filtered: %s", out)
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(out), &rec); err != nil {
		t.Fatalf("json: %v (%s)", err, out)
	}
	if rec["msg"] != "kept" || rec["key"] != "value" {
		t.Fatalf("record=%v", rec)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{"DEBUG": slog.LevelDebug, "warning": slog.LevelWarn, "error": slog.LevelError, "": slog.LevelInfo}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("%q: got %v want %v", in, got, want)
		}
	}
}

func TestSetIgnoresNil(t *testing.T) {
	prev := L
	Set(nil)
	if L != prev {
		t.Fatalf("nil logger replaced L")
	}
}
