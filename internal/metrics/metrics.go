package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "canchero",
			Name:      "booking_created_total",
			Help:      "Count of bookings created by status.",
		},
		[]string{"status"},
	)

	bookingConfirmed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "canchero",
			Name:      "booking_confirmed_total",
			Help:      "Count of bookings confirmed.",
		},
	)

	bookingCancelled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "canchero",
			Name:      "booking_cancelled_total",
			Help:      "Count of bookings cancelled.",
		},
	)

	slotConflict = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "canchero",
			Name:      "booking_slot_conflict_total",
			Help:      "Count of booking attempts rejected for an occupied slot.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "canchero",
			Name:      "http_requests_total",
			Help:      "Count of API requests by endpoint and status code.",
		},
		[]string{"endpoint", "code"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingCreated, bookingConfirmed, bookingCancelled, slotConflict, httpRequests)
	})
}

func IncBookingCreated(status string) {
	bookingCreated.WithLabelValues(status).Inc()
}

func IncBookingConfirmed() {
	bookingConfirmed.Inc()
}

func IncBookingCancelled() {
	bookingCancelled.Inc()
}

func IncSlotConflict() {
	slotConflict.Inc()
}

func IncHTTPRequest(endpoint, code string) {
	httpRequests.WithLabelValues(endpoint, code).Inc()
}
