package metrics_test

import (
	"homestay/infras/metrics"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *metrics.Metrics) string {
	t.Helper()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	return string(body)
}

func TestMetrics_Counters(t *testing.T) {
	m := metrics.New()

	m.IncCheckout("CASH", "PENDING")
	m.IncCheckout("CASH", "PENDING")
	m.IncOutbox("sent", 3)
	m.BookingsCancelled.Inc()

	body := scrape(t, m)

	assert.Contains(t, body, `homestay_checkout_bookings_total{method="CASH",status="PENDING"} 2`)
	assert.Contains(t, body, `homestay_outbox_events_total{result="sent"} 3`)
	assert.Contains(t, body, "homestay_bookings_cancelled_total 1")
}

func TestMetrics_InstancesAreIsolated(t *testing.T) {
	first := metrics.New()
	second := metrics.New()

	first.BookingsCompleted.Add(4)

	assert.Contains(t, scrape(t, first), "homestay_bookings_completed_total 4")
	assert.Contains(t, scrape(t, second), "homestay_bookings_completed_total 0")
}
