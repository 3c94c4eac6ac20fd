package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	estimations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "alcometer",
			Name:      "estimations_total",
			Help:      "Count of estimations by source, numeric outcome and level.",
		},
		[]string{"source", "outcome", "level"},
	)

	historyWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "alcometer",
			Name:      "history_writes_total",
			Help:      "Count of history writes by status.",
		},
		[]string{"status"},
	)

	historyDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "alcometer",
			Name:      "history_dropped_total",
			Help:      "Count of history records dropped because the queue was full.",
		},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "alcometer",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by path and status code.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"path", "code"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(estimations, historyWrites, historyDropped, requestDuration)
	})
}

func IncEstimation(source, outcome, level string) {
	estimations.WithLabelValues(source, outcome, level).Inc()
}

func IncHistoryWrite(status string) {
	historyWrites.WithLabelValues(status).Inc()
}

func IncHistoryDropped() {
	historyDropped.Inc()
}

func ObserveRequest(path, code string, seconds float64) {
	requestDuration.WithLabelValues(path, code).Observe(seconds)
}
