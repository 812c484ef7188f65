// Package metrics provides Prometheus instrumentation for the booking
// service. Collectors live on a private registry exposed by Handler.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "table_booking"

var (
	// BookingAttempts counts createBooking calls by outcome
	// ("created", "slot_taken", "validation", "not_found", "storage").
	BookingAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "booking_attempts_total",
			Help:      "Booking attempts by outcome.",
		},
		[]string{"outcome"},
	)

	// Cancellations counts cancelBooking calls by outcome.
	Cancellations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "cancellations_total",
			Help:      "Cancellation attempts by outcome.",
		},
		[]string{"outcome"},
	)

	// TxDuration tracks how long engine transactions take end to end,
	// including slot lock acquisition.
	TxDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "tx_duration_seconds",
			Help:      "Duration of booking and cancellation transactions.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	// EventsPublished counts booking events handed to the broker.
	EventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "events_published_total",
			Help:      "Booking events published by type and result.",
		},
		[]string{"type", "result"},
	)

	// RequestTotal counts HTTP requests by method, route and status.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	// RequestDuration tracks HTTP latency by method and route.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// Registry holds every collector of the service plus Go runtime metrics.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(collectors.NewGoCollector())
	Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	Registry.MustRegister(
		BookingAttempts,
		Cancellations,
		TxDuration,
		EventsPublished,
		RequestTotal,
		RequestDuration,
	)
}

// Handler exposes the registry on GET /metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// ObserveTx records an engine transaction duration:
//
//	defer metrics.ObserveTx("create", time.Now())
func ObserveTx(operation string, start time.Time) {
	TxDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
