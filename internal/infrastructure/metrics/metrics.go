package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	feedCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snapfeed_feed_cache_requests_total",
			Help: "Feed page cache lookups by result",
		},
		[]string{"result"},
	)

	feedCacheDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "snapfeed_feed_cache_lookup_seconds",
			Help:    "Feed page cache lookup latency",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1},
		},
		[]string{"result"},
	)

	mediaUploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snapfeed_media_uploads_total",
			Help: "Media uploads by category and result",
		},
		[]string{"category", "result"},
	)

	mediaStoredBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "snapfeed_media_stored_bytes",
			Help:    "Size of normalized payloads written to the media store",
			Buckets: prometheus.ExponentialBuckets(16*1024, 2, 10),
		},
	)

	likeToggles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snapfeed_like_toggles_total",
			Help: "Like toggles by resulting state",
		},
		[]string{"state"},
	)

	cascadeOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snapfeed_post_delete_media_outcomes_total",
			Help: "Outcome of the media step when a post is deleted",
		},
		[]string{"outcome"},
	)

	auditRecords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snapfeed_audit_records_total",
			Help: "Posts processed by the integrity auditor by action",
		},
		[]string{"action"},
	)

	// RedisErrors counts failed redis commands, excluding cache misses.
	RedisErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snapfeed_redis_errors_total",
			Help: "Redis command errors by command name",
		},
		[]string{"command"},
	)

	// HTTPRequests counts served requests by route template.
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snapfeed_http_requests_total",
			Help: "HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPDuration observes request latency by route template.
	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "snapfeed_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

func IncFeedHit() { feedCacheRequests.WithLabelValues("hit").Inc() }
func IncFeedMiss() { feedCacheRequests.WithLabelValues("miss").Inc() }

func AddHitDuration(seconds float64) { feedCacheDuration.WithLabelValues("hit").Observe(seconds) }
func AddMissDuration(seconds float64) { feedCacheDuration.WithLabelValues("miss").Observe(seconds) }

// ObserveUpload records an upload attempt and, on success, the stored size.
func ObserveUpload(category, result string, storedBytes int) {
	mediaUploads.WithLabelValues(category, result).Inc()
	if storedBytes > 0 {
		mediaStoredBytes.Observe(float64(storedBytes))
	}
}

func IncLikeToggle(liked bool) {
	if liked {
		likeToggles.WithLabelValues("liked").Inc()
		return
	}
	likeToggles.WithLabelValues("unliked").Inc()
}

func IncCascadeOutcome(outcome string) { cascadeOutcomes.WithLabelValues(outcome).Inc() }

func AddAuditRecords(action string, n int) {
	if n > 0 {
		auditRecords.WithLabelValues(action).Add(float64(n))
	}
}
