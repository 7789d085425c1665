package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hoopsnews_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hoopsnews_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// ArticleViewsTotal counts recorded article views.
	ArticleViewsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hoopsnews_article_views_total",
		Help: "Total number of article views recorded",
	})

	// CommentModerationTotal counts moderation decisions by action.
	CommentModerationTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hoopsnews_comment_moderation_total",
		Help: "Total number of comment moderation decisions by action",
	}, []string{"action"})

	// CacheRequestsTotal counts cache lookups by key prefix and outcome.
	CacheRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hoopsnews_cache_requests_total",
		Help: "Total number of cache lookups by outcome",
	}, []string{"prefix", "outcome"})
)

// DatabaseMetrics wraps DB access for recording query latency.
type DatabaseMetrics struct {
	db *gorm.DB
}

// NewDatabaseMetrics returns a new DatabaseMetrics instance.
func NewDatabaseMetrics(db *gorm.DB) *DatabaseMetrics {
	return &DatabaseMetrics{db: db}
}

// ObserveQuery records the latency of a database query.
func (m *DatabaseMetrics) ObserveQuery(operation, table string, start time.Time) {
	latency := time.Since(start).Seconds()
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(latency)
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func (m *DatabaseMetrics) TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		m.ObserveQuery(operation, table, start)
	}
}
