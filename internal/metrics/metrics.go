package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitcoach_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fitcoach_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	BookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitcoach_bookings_total",
			Help: "Booking attempts by outcome",
		},
		[]string{"outcome"},
	)

	CancellationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitcoach_session_cancellations_total",
			Help: "Session cancellations by outcome",
		},
		[]string{"outcome"},
	)

	CheckInsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitcoach_check_ins_total",
			Help: "Client check-ins by outcome",
		},
		[]string{"outcome"},
	)

	AvailabilityMergesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fitcoach_availability_merges_total",
			Help: "Availability normalization passes",
		},
	)

	AvailabilityConsumedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitcoach_availability_consumed_total",
			Help: "Availability slots consumed by bookings, by split action",
		},
		[]string{"action"},
	)

	ExpiredSlotsDeletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fitcoach_expired_slots_deleted_total",
			Help: "Availability slots removed because they ended in the past",
		},
	)

	TimetableCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitcoach_timetable_cache_total",
			Help: "Weekly timetable cache lookups by result",
		},
		[]string{"result"},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordBooking(outcome string) {
	BookingsTotal.WithLabelValues(outcome).Inc()
}

func RecordCancellation(outcome string) {
	CancellationsTotal.WithLabelValues(outcome).Inc()
}

func RecordCheckIn(outcome string) {
	CheckInsTotal.WithLabelValues(outcome).Inc()
}

func RecordMerge() {
	AvailabilityMergesTotal.Inc()
}

func RecordConsume(action string) {
	AvailabilityConsumedTotal.WithLabelValues(action).Inc()
}

func RecordExpiredSlots(n int64) {
	if n > 0 {
		ExpiredSlotsDeletedTotal.Add(float64(n))
	}
}

func RecordTimetableCache(result string) {
	TimetableCacheTotal.WithLabelValues(result).Inc()
}
