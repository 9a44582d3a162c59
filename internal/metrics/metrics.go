package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lumiere",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	holdsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "lumiere",
			Name:      "holds_created_total",
			Help:      "Reservation holds created.",
		},
	)

	holdConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "lumiere",
			Name:      "hold_conflicts_total",
			Help:      "Hold attempts rejected because the slot overlapped an active reservation.",
		},
	)

	lockTimeouts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lumiere",
			Name:      "lock_timeouts_total",
			Help:      "Resource lock acquisitions that timed out.",
		},
		[]string{"resource"},
	)

	holdsExpired = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lumiere",
			Name:      "holds_expired_total",
			Help:      "Held reservations reclaimed after their lock expired, by reconciliation path.",
		},
		[]string{"path"},
	)

	smsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lumiere",
			Name:      "sms_sent_total",
			Help:      "SMS delivery attempts by result.",
		},
		[]string{"result"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, holdsCreated, holdConflicts, lockTimeouts, holdsExpired, smsSent)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

func IncHoldCreated() {
	holdsCreated.Inc()
}

func IncHoldConflict() {
	holdConflicts.Inc()
}

// IncLockTimeout records a lock acquisition timeout for a resource kind
// ("table" or "reservation").
func IncLockTimeout(resource string) {
	lockTimeouts.WithLabelValues(resource).Inc()
}

// IncHoldExpired records a reclaimed hold; path is "inline" or "sweep".
func IncHoldExpired(path string) {
	holdsExpired.WithLabelValues(path).Inc()
}

// IncSMS records an SMS attempt; result is "sent" or "failed".
func IncSMS(result string) {
	smsSent.WithLabelValues(result).Inc()
}
