package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := New(&buf, "warn", "json")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("dropped")
	logger.Warn("kept", "slot", "09:00")

	line := strings.TrimSpace(buf.String())
	if strings.Contains(line, "dropped") {
		t.Fatalf("expected info record to be filtered, got %q", line)
	}
	var record map[string]any
	if err := json.Unmarshal([]byte(line), &record); err != nil {
		t.Fatalf("expected a JSON record, got %q: %v", line, err)
	}
	if record["slot"] != "09:00" {
		t.Fatalf("expected slot attribute, got %#v", record)
	}

	if _, err := New(&buf, "loud", "json"); err == nil {
		t.Fatalf("expected unknown level to be rejected")
	}
	if _, err := New(&buf, "info", "xml"); err == nil {
		t.Fatalf("expected unknown format to be rejected")
	}
}

func TestContextLogger(t *testing.T) {
	t.Parallel()

	if FromContext(context.Background()) != nil {
		t.Fatalf("expected no logger on a bare context")
	}
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ctx := ContextWithLogger(context.Background(), logger)
	if FromContext(ctx) != logger {
		t.Fatalf("expected logger to round-trip through the context")
	}
}
