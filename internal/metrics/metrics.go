// Package metrics registers Prometheus instrumentation for the API.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal     prometheus.CounterVec
	HTTPRequestDuration   prometheus.HistogramVec
	HTTPRequestSize       prometheus.HistogramVec
	HTTPResponseSize      prometheus.HistogramVec
	HTTPActiveConnections prometheus.GaugeVec

	// Cache metrics
	CacheHitsTotal   prometheus.CounterVec
	CacheMissesTotal prometheus.CounterVec

	// Rate limiting metrics
	RateLimitExceededTotal prometheus.CounterVec

	// Database metrics
	DatabaseQueryDuration   prometheus.HistogramVec
	DatabaseQueriesTotal    prometheus.CounterVec
	DatabaseConnectionsOpen prometheus.GaugeVec

	// Redis metrics
	RedisOperationsTotal prometheus.CounterVec

	// Community engagement
	PostsCreated       prometheus.CounterVec
	CommentsTotal      prometheus.CounterVec
	LikesTotal         prometheus.CounterVec
	PollVotesCast      prometheus.CounterVec
	BookingsCreated    prometheus.CounterVec
	SubscriptionsTotal prometheus.CounterVec
	ReportsFiled       prometheus.CounterVec

	// Notification delivery
	NotificationsCreated prometheus.CounterVec
	NotificationsPushed  prometheus.CounterVec

	// WebSocket
	WebsocketConnections prometheus.GaugeVec

	// Error metrics
	ErrorsTotal prometheus.CounterVec
}

var (
	instance *Metrics
	once     sync.Once
)

// Initialize creates and registers all Prometheus metrics
func Initialize() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			HTTPRequestsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "path", "status"},
			),
			HTTPRequestDuration: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_request_duration_seconds",
					Help:    "HTTP request latency in seconds",
					Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
				},
				[]string{"method", "path", "status"},
			),
			HTTPRequestSize: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_request_size_bytes",
					Help:    "HTTP request body size in bytes",
					Buckets: prometheus.ExponentialBuckets(100, 10, 7),
				},
				[]string{"method", "path"},
			),
			HTTPResponseSize: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_response_size_bytes",
					Help:    "HTTP response size in bytes",
					Buckets: prometheus.ExponentialBuckets(100, 10, 7),
				},
				[]string{"method", "path", "status"},
			),
			HTTPActiveConnections: *promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "http_active_connections",
					Help: "Number of currently active HTTP connections",
				},
				[]string{"method", "path"},
			),

			CacheHitsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cache_hits_total",
					Help: "Total number of cache hits",
				},
				[]string{"cache_name"},
			),
			CacheMissesTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cache_misses_total",
					Help: "Total number of cache misses",
				},
				[]string{"cache_name"},
			),

			RateLimitExceededTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "rate_limit_exceeded_total",
					Help: "Total number of rate limit violations",
				},
				[]string{"endpoint", "method"},
			),

			DatabaseQueryDuration: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "database_query_duration_seconds",
					Help:    "Database query latency in seconds",
					Buckets: []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5},
				},
				[]string{"query_type", "table"},
			),
			DatabaseQueriesTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "database_queries_total",
					Help: "Total number of database queries",
				},
				[]string{"query_type", "table", "status"},
			),
			DatabaseConnectionsOpen: *promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "database_connections_open",
					Help: "Number of currently open database connections",
				},
				[]string{"database"},
			),

			RedisOperationsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "redis_operations_total",
					Help: "Total number of Redis operations",
				},
				[]string{"operation", "status"},
			),

			PostsCreated: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "posts_created_total",
					Help: "Total number of posts created",
				},
				[]string{"type", "city"},
			),
			CommentsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "comments_total",
					Help: "Total number of comments created",
				},
				[]string{},
			),
			LikesTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "likes_total",
					Help: "Total number of post likes",
				},
				[]string{},
			),
			PollVotesCast: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "poll_votes_cast_total",
					Help: "Total number of poll votes accepted",
				},
				[]string{},
			),
			BookingsCreated: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "bookings_created_total",
					Help: "Total number of artist booking requests",
				},
				[]string{},
			),
			SubscriptionsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "artist_subscriptions_total",
					Help: "Total number of artist subscriptions",
				},
				[]string{"action"},
			),
			ReportsFiled: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "reports_filed_total",
					Help: "Total number of content reports filed",
				},
				[]string{"target_type", "reason"},
			),

			NotificationsCreated: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "notifications_created_total",
					Help: "Total number of notifications written",
				},
				[]string{"type"},
			),
			NotificationsPushed: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "notifications_pushed_total",
					Help: "Total number of notifications pushed over websocket",
				},
				[]string{},
			),

			WebsocketConnections: *promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "websocket_connections_active",
					Help: "Number of currently active websocket connections",
				},
				[]string{},
			),

			ErrorsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "errors_total",
					Help: "Total number of errors by type",
				},
				[]string{"error_type", "endpoint"},
			),
		}
	})
	return instance
}

// Get returns the global metrics instance
func Get() *Metrics {
	if instance == nil {
		return Initialize()
	}
	return instance
}
