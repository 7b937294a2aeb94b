package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Latency of a full scan resolution, data access included
	ScanResolveLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "scan_resolve_latency_seconds",
		Help:    "Latency of scan resolutions",
		Buckets: prometheus.DefBuckets,
	})

	// Resolutions that reached an experience, by variant
	ScanResolutions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scan_resolutions_total",
		Help: "Total number of scan resolutions by experience",
	}, []string{"experience"})

	// Resolutions that ended in an error, by error code
	ScanResolveErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scan_resolve_errors_total",
		Help: "Total number of failed scan resolutions by error code",
	}, []string{"code"})

	// Scan bookkeeping writes that failed and were swallowed
	ScanPersistFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "scan_persist_failures_total",
		Help: "Scan record upserts that failed without blocking the response",
	})

	// Duplicate resolutions suppressed by the session guard
	SessionGuardHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "scan_session_guard_hits_total",
		Help: "Resolutions answered from session state without data access",
	})

	ScanEventPublishFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "scan_event_publish_failures_total",
		Help: "Scan events that could not be published to the broker",
	})
)

func Init() {
	prometheus.MustRegister(
		ScanResolveLatency,
		ScanResolutions,
		ScanResolveErrors,
		ScanPersistFailures,
		SessionGuardHits,
		ScanEventPublishFailures,
	)
}
