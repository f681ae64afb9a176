package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "healthdocs"

// Outcome labels for adapter counters.
const (
	OutcomeSuccess         = "success"
	OutcomeEmpty           = "empty"
	OutcomeFailed          = "failed"
	OutcomeSkipped         = "skipped"
	OutcomeInvalidCategory = "invalid_category"
)

var (
	registry = prometheus.NewRegistry()

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	uploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Documents stored, by resolved category.",
		},
		[]string{"category"},
	)
	extractionTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extraction_total",
			Help:      "Text extraction attempts by outcome.",
		},
		[]string{"outcome"},
	)
	classificationTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classification_total",
			Help:      "Classification attempts by outcome.",
		},
		[]string{"outcome"},
	)
	blobCleanupFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blob_cleanup_failures_total",
			Help:      "Blob deletions that failed and left an orphaned object.",
		},
	)
)

func init() {
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		httpRequestsTotal,
		httpRequestDuration,
		uploadsTotal,
		extractionTotal,
		classificationTotal,
		blobCleanupFailures,
	)
}

// IncUpload counts a persisted document under its category.
func IncUpload(category string) {
	uploadsTotal.WithLabelValues(category).Inc()
}

// IncExtraction counts an extraction attempt.
func IncExtraction(outcome string) {
	extractionTotal.WithLabelValues(outcome).Inc()
}

// IncClassification counts a classification attempt.
func IncClassification(outcome string) {
	classificationTotal.WithLabelValues(outcome).Inc()
}

// IncBlobCleanupFailure counts a blob that could not be removed.
func IncBlobCleanupFailure() {
	blobCleanupFailures.Inc()
}

// HTTP records request counts and latency per matched route.
func HTTP() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
}
