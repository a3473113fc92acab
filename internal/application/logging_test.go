package application

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/example/salon-scheduler/internal/logging"
)

func TestDefaultLogger(t *testing.T) {
	t.Parallel()

	custom := slog.New(slog.NewTextHandler(io.Discard, nil))
	if got := defaultLogger(custom); got != custom {
		t.Fatalf("expected custom logger to be returned")
	}

	if got := defaultLogger(nil); got != slog.Default() {
		t.Fatalf("expected default logger when none provided")
	}
}

func TestServiceLogger_PrefersRequestLogger(t *testing.T) {
	t.Parallel()

	var base, request bytes.Buffer
	baseLogger := slog.New(slog.NewJSONHandler(&base, nil))
	requestLogger := slog.New(slog.NewJSONHandler(&request, nil)).With("request_id", "req-7")
	ctx := logging.ContextWithLogger(context.Background(), requestLogger)

	serviceLogger(ctx, baseLogger, "BookingService", "CreateAppointment", "date", "2025-06-02").
		InfoContext(ctx, "appointment created")

	if base.Len() != 0 {
		t.Fatalf("expected base logger to stay silent, got %s", base.String())
	}

	var entry map[string]any
	if err := json.Unmarshal(request.Bytes(), &entry); err != nil {
		t.Fatalf("failed to decode log entry: %v", err)
	}
	for key, want := range map[string]string{
		"request_id": "req-7",
		"service":    "BookingService",
		"operation":  "CreateAppointment",
		"date":       "2025-06-02",
	} {
		if entry[key] != want {
			t.Fatalf("expected %s=%q, got %v", key, want, entry[key])
		}
	}
}

func TestServiceLogger_FallsBackToBase(t *testing.T) {
	t.Parallel()

	var base bytes.Buffer
	serviceLogger(context.Background(), slog.New(slog.NewTextHandler(&base, nil)), "CatalogService", "AddService").
		Info("service added")

	if !bytes.Contains(base.Bytes(), []byte("service=CatalogService")) {
		t.Fatalf("expected base logger output, got %q", base.String())
	}
}
