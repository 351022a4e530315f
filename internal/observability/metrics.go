package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coach_plans",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests handled, by method, route and status.",
	}, []string{"method", "route", "status"})
	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "coach_plans",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency, by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
	plansCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coach_plans",
		Subsystem: "plans",
		Name:      "created_total",
		Help:      "Plans persisted, by how they were created.",
	}, []string{"source"})
)

// Plan creation sources.
const (
	SourcePayload   = "payload"
	SourceDuplicate = "duplicate"
	SourceTemplate  = "template"
)

func init() {
	prometheus.MustRegister(httpRequests, httpDuration, plansCreated)
}

// RecordHTTPRequest observes one finished request. route is the matched
// pattern, not the raw path, to keep cardinality bounded.
func RecordHTTPRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RecordPlanCreated counts a persisted plan.
func RecordPlanCreated(source string) {
	plansCreated.WithLabelValues(source).Inc()
}
