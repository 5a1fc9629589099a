package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("invalid JSON log line %q: %v", line, err)
		}
		out = append(out, entry)
	}
	return out
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		" warn ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
		"":        slog.LevelInfo,
	}

	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, slog.LevelWarn)
	ctx := context.Background()

	logger.InfoContext(ctx, "filtered")
	logger.WarnContext(ctx, "kept")

	lines := decodeLines(t, &buf)
	if len(lines) != 1 || lines[0]["msg"] != "kept" {
		t.Errorf("expected only the warning, got %v", lines)
	}
}

func TestLoggerTraceIDs(t *testing.T) {
	t.Run("adds ids inside a span", func(t *testing.T) {
		setupTracerProvider(t)

		var buf bytes.Buffer
		logger := NewLoggerTo(&buf, slog.LevelInfo)

		ctx, span := StartSpan(context.Background(), "op")
		logger.InfoContext(ctx, "inside")
		span.End()

		entry := decodeLines(t, &buf)[0]
		if entry["trace_id"] != span.SpanContext().TraceID().String() {
			t.Errorf("expected trace_id, got %v", entry["trace_id"])
		}
		if entry["span_id"] != span.SpanContext().SpanID().String() {
			t.Errorf("expected span_id, got %v", entry["span_id"])
		}
	})

	t.Run("omits ids without a span", func(t *testing.T) {
		var buf bytes.Buffer
		NewLoggerTo(&buf, slog.LevelInfo).Info("outside")

		entry := decodeLines(t, &buf)[0]
		if _, ok := entry["trace_id"]; ok {
			t.Error("expected no trace_id")
		}
	})
}

func TestLoggerAttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, slog.LevelInfo).
		With("service", "storefront").
		WithGroup("wishlist")

	logger.Info("changed", "product_id", "42")

	entry := decodeLines(t, &buf)[0]
	if entry["service"] != "storefront" {
		t.Errorf("expected top-level service attr, got %v", entry)
	}
	group, ok := entry["wishlist"].(map[string]any)
	if !ok || group["product_id"] != "42" {
		t.Errorf("expected grouped product_id, got %v", entry["wishlist"])
	}
}
