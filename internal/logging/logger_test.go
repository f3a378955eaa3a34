package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/sundai-club/reddit-rhymes/internal/services"
)

func TestConsoleHandlerOutput(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl))

	logger.Info("render complete", String("output", "final.mp4"), Float64("duration_sec", 6.5))

	line := buf.String()
	if !strings.Contains(line, "INFO render complete") {
		t.Fatalf("missing level/message: %q", line)
	}
	if !strings.Contains(line, "output=final.mp4") || !strings.Contains(line, "duration_sec=6.5") {
		t.Fatalf("missing attributes: %q", line)
	}
}

func TestConsoleHandlerQuotesValues(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl))

	logger.Warn("probe failed", String("reason", "zero length file"))

	if !strings.Contains(buf.String(), `reason="zero length file"`) {
		t.Fatalf("expected quoted value: %q", buf.String())
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	t.Parallel()
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWithContextAddsRunFields(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	base := slog.New(newConsoleHandler(&buf, lvl))

	ctx := services.WithRunID(context.Background(), "run-1234")
	ctx = services.WithStage(ctx, "timeline")
	WithContext(ctx, base).Info("stage started")

	line := buf.String()
	if !strings.Contains(line, "run_id=run-1234") || !strings.Contains(line, "stage=timeline") {
		t.Fatalf("missing context fields: %q", line)
	}
}

func TestWithContextNilLogger(t *testing.T) {
	t.Parallel()
	logger := WithContext(context.Background(), nil)
	if logger == nil {
		t.Fatal("expected non-nil logger")
	}
	logger.Info("no-op")
}
