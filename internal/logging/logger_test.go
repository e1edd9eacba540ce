package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"vidscribe/internal/asr"
)

func TestNewJSONLoggerEmitsNormalizedKeys(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "debug", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("resolution complete", Args(String(FieldSource, "native_subtitle"), Float64("cost", 0))...)

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("parse log line: %v", err)
	}
	if record["msg"] != "resolution complete" {
		t.Fatalf("msg = %v", record["msg"])
	}
	if record["level"] != "info" {
		t.Fatalf("level = %v", record["level"])
	}
	if record[FieldSource] != "native_subtitle" {
		t.Fatalf("source = %v", record[FieldSource])
	}
}

func TestNewRejectsUnsupportedFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestConsoleHandlerIncludesComponentAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "info", Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	NewComponentLogger(logger, "resolver").Warn("provider failed", Args(String("provider", "omni"))...)

	line := buf.String()
	for _, want := range []string{"WARN", "[resolver]", "provider failed", "provider=omni"} {
		if !strings.Contains(line, want) {
			t.Errorf("log line %q missing %q", line, want)
		}
	}
}

func TestWithContextAttachesResolutionFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := asr.WithProvider(asr.WithResolutionID(context.Background(), "res-42"), "whisper")
	WithContext(ctx, logger).Info("attempt")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("parse log line: %v", err)
	}
	if record[FieldResolutionID] != "res-42" || record[FieldProvider] != "whisper" {
		t.Fatalf("context fields missing: %v", record)
	}
}

func TestNopLoggerIsSilent(t *testing.T) {
	logger := NewNop()
	logger.Error("should vanish")
	if logger.Enabled(context.Background(), 12) {
		t.Fatal("noop logger must report disabled")
	}
}
