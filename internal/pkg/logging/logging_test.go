package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNew_JSON(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(buf, "info", "json")
	log.Info("dataset loaded", "rows", 42)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "dataset loaded" {
		t.Errorf("unexpected msg %v", entry["msg"])
	}
	if entry["rows"] != float64(42) {
		t.Errorf("unexpected rows %v", entry["rows"])
	}
}

func TestNew_TextRespectsLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(buf, "warn", "text")
	log.Info("hidden")
	log.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line should be filtered: %s", out)
	}
	if !strings.Contains(out, "msg=shown") {
		t.Errorf("expected text output with warn line, got %s", out)
	}
}
