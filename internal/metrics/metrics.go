package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rezervator",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	reservationOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rezervator",
			Name:      "reservation_operations_total",
			Help:      "Reservation operations by kind.",
		},
		[]string{"op"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, reservationOps)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncReservationOp increments the counter for a reservation operation.
func IncReservationOp(op string) {
	reservationOps.WithLabelValues(op).Inc()
}
