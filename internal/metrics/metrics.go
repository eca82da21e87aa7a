package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BookingsTotal counts committed bookings by owner kind and resulting status.
	BookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "railway",
			Name:      "bookings_total",
			Help:      "The total number of committed bookings",
		},
		[]string{"owner", "status"},
	)

	CancellationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "railway",
			Name:      "cancellations_total",
			Help:      "The total number of committed cancellations",
		},
		[]string{"owner"},
	)

	WaitlistPromotionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "railway",
			Name:      "waitlist_promotions_total",
			Help:      "The total number of waiting-list tickets confirmed after a cancellation",
		},
	)

	// BookingFailuresTotal is labelled with the stable error code.
	BookingFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "railway",
			Name:      "booking_failures_total",
			Help:      "The total number of rejected booking and cancellation requests",
		},
		[]string{"code"},
	)

	MessagesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "messages",
			Name:      "processed_total",
			Help:      "The total number of processed messages",
		},
		[]string{"topic", "handler"},
	)

	MessagesProcessingFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "messages",
			Name:      "processing_failed_total",
			Help:      "The total number of message processing failures",
		},
		[]string{"topic", "handler"},
	)

	MessagesProcessingDuration = promauto.NewSummaryVec(
		prometheus.SummaryOpts{
			Namespace:  "messages",
			Name:       "processing_duration_seconds",
			Help:       "The total time spent processing messages",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"topic", "handler"},
	)
)
