package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ValidationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crud_validation_failures_total",
			Help: "Field validation failures by kind",
		},
		[]string{"kind"},
	)
	SessionTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crud_session_transitions_total",
			Help: "Session status transitions by target status",
		},
		[]string{"status"},
	)
	LoginResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crud_login_results_total",
			Help: "Login attempts by result",
		},
		[]string{"result"},
	)
	SettingsCacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "crud_settings_cache_hits_total",
			Help: "Settings cache hits",
		},
	)
	SettingsCacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "crud_settings_cache_misses_total",
			Help: "Settings cache misses",
		},
	)
	APIRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crud_api_requests_total",
			Help: "Number of dev server API requests",
		},
		[]string{"method", "path", "status"},
	)
	APILatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crud_api_latency_seconds",
			Help:    "Dev server API latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

func init() {
	prometheus.MustRegister(
		ValidationFailures,
		SessionTransitions,
		LoginResults,
		SettingsCacheHits,
		SettingsCacheMisses,
		APIRequests,
		APILatency,
	)
}
