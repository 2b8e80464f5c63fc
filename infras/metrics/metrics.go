package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "homestay"

// Metrics owns a private registry served by Handler.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests      *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
	CheckoutBookings  *prometheus.CounterVec
	BookingsCancelled prometheus.Counter
	BookingsCompleted prometheus.Counter
	OutboxEvents      *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Count of HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		CheckoutBookings: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_bookings_total",
			Help:      "Count of bookings created by checkout, by payment method and payment status.",
		}, []string{"method", "status"}),
		BookingsCancelled: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_cancelled_total",
			Help:      "Count of bookings cancelled.",
		}),
		BookingsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_completed_total",
			Help:      "Count of bookings moved to COMPLETED by the completion job.",
		}),
		OutboxEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_events_total",
			Help:      "Count of outbox deliveries by result.",
		}, []string{"result"}),
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) IncCheckout(method, status string) {
	m.CheckoutBookings.WithLabelValues(method, status).Inc()
}

func (m *Metrics) IncOutbox(result string, count int) {
	m.OutboxEvents.WithLabelValues(result).Add(float64(count))
}
