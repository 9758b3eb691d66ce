package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"gardencore/internal/config"
)

func TestNewWithWriterEmitsServiceField(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, config.Logging{Level: "info", Service: "gardencore-test"})

	log.Info("plot booked", "plot_id", "P1")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}
	if record["service"] != "gardencore-test" {
		t.Fatalf("missing service attribute: %v", record)
	}
	if record["msg"] != "plot booked" || record["plot_id"] != "P1" {
		t.Fatalf("unexpected record: %v", record)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, config.Logging{Level: "error", Service: "s"})

	log.Info("suppressed")
	if buf.Len() != 0 {
		t.Fatalf("info record should be filtered at error level: %s", buf.String())
	}
	log.Error("kept")
	if buf.Len() == 0 {
		t.Fatal("error record missing")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for input, want := range cases {
		if got := parseLevel(input); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}
