package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "teams_worktime"

var (
	// UpstreamRequests counts calls to the Teams attendance API by transport
	// outcome (ok, http_error, transport_error).
	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_requests_total",
		Help:      "Teams attendance API requests by outcome.",
	}, []string{"outcome"})

	// UpstreamPayloadErrors counts 2xx responses that still failed (api_error, decode_error).
	UpstreamPayloadErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_payload_errors_total",
		Help:      "Teams attendance API responses rejected after decoding.",
	}, []string{"reason"})

	UpstreamDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_request_duration_seconds",
		Help:      "Latency of Teams attendance API requests.",
		Buckets:   prometheus.DefBuckets,
	})

	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "calendar_cache_lookups_total",
		Help:      "Calendar cache lookups by result (hit, miss, error, bypass).",
	}, []string{"result"})

	Syncs = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "syncs_total",
		Help:      "Attendance syncs by trigger (api, cron) and status (success, failure).",
	}, []string{"trigger", "status"})

	SyncedRecords = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_sync_records",
		Help:      "Number of records stored by the most recent successful sync.",
	})
)

// ObserveUpstream records one upstream call.
func ObserveUpstream(outcome string, started time.Time) {
	UpstreamRequests.WithLabelValues(outcome).Inc()
	UpstreamDuration.Observe(time.Since(started).Seconds())
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
