package utils

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// ReqCount counts HTTP requests by method, path and status.
	ReqCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymrat_http_requests_total",
			Help: "Number of HTTP requests processed",
		},
		[]string{"method", "path", "status"},
	)

	// ReqDuration observes request latency per path.
	ReqDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gymrat_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// ActivitiesLogged counts activities created, by sport.
	ActivitiesLogged = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymrat_activities_logged_total",
			Help: "Number of activities logged",
		},
		[]string{"sport"},
	)

	// LedgerRetries counts retried aggregate increments.
	LedgerRetries = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gymrat_ledger_retries_total",
		Help: "Number of retried point aggregate updates",
	})

	// LedgerUnapplied counts point entries left unapplied after the
	// retry budget was exhausted. Any increase means aggregates are
	// temporarily inconsistent and the repair loop has work to do.
	LedgerUnapplied = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gymrat_ledger_unapplied_total",
		Help: "Number of point entries that exhausted their retry budget",
	})

	// LedgerRepaired counts entries replayed by the repair loop.
	LedgerRepaired = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gymrat_ledger_repaired_total",
		Help: "Number of point entries applied by the repair loop",
	})
)

// InitMetrics registers all collectors. Call once during boot.
func InitMetrics() {
	prometheus.MustRegister(ReqCount, ReqDuration, ActivitiesLogged, LedgerRetries, LedgerUnapplied, LedgerRepaired)
}

// RequestMetrics is a gin middleware recording per-request counters.
func RequestMetrics() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		path := ctx.FullPath()
		if path == "" {
			path = "unmatched"
		}
		ReqCount.WithLabelValues(ctx.Request.Method, path, strconv.Itoa(ctx.Writer.Status())).Inc()
		ReqDuration.WithLabelValues(ctx.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
