package metrics

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/example/salon-scheduler/internal/application"
)

func TestMetrics_BookingOutcomes(t *testing.T) {
	t.Parallel()

	m := New("salon")
	m.BookingAttempted(application.BookingSucceeded)
	m.BookingAttempted(application.ReasonSlotTaken)
	m.BookingAttempted(application.ReasonSlotTaken)
	m.CancellationAttempted(application.CancelNotFound)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.bookings.WithLabelValues("created")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.bookings.WithLabelValues("slot_taken")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cancellations.WithLabelValues("not_found")))
}

func TestMetrics_Handler(t *testing.T) {
	t.Parallel()

	m := New("salon")
	m.ObserveHTTP("/api/v1/slots", http.MethodGet, http.StatusOK, 25*time.Millisecond)

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, m.RegisterDB(db, "salon"))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `salon_http_requests_total{method="GET",route="/api/v1/slots",status="200"} 1`), body)
	assert.Contains(t, body, "salon_http_request_duration_seconds_bucket")
	assert.Contains(t, body, `go_sql_open_connections{db_name="salon"}`)
}
