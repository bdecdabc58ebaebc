package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewTextLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewTextLogger(&buf, "warn")
	logger.Info("ingestion_started")
	logger.Warn("ingestion_document_skipped", "file", "a.pdf")

	out := buf.String()
	if strings.Contains(out, "ingestion_started") {
		t.Fatalf("info record should be filtered: %s", out)
	}
	if !strings.Contains(out, "ingestion_document_skipped") || !strings.Contains(out, "file=a.pdf") {
		t.Fatalf("missing warn record: %s", out)
	}
}
