package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "costengine"

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being served",
		},
	)

	// Anomaly detection metrics
	anomaliesDetectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "anomaly",
			Name:      "detected_total",
			Help:      "Total number of cost anomalies detected",
		},
		[]string{"severity", "type"},
	)

	detectionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "anomaly",
			Name:      "detection_duration_seconds",
			Help:      "Duration of anomaly detection runs in seconds",
			Buckets:   []float64{.001, .01, .05, .1, .5, 1, 5, 10, 30},
		},
	)

	resourcesSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "anomaly",
			Name:      "resources_skipped_total",
			Help:      "Resources skipped for lack of history",
		},
		[]string{"reason"},
	)

	// Optimization metrics
	recommendationsGeneratedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "recommendation",
			Name:      "generated_total",
			Help:      "Total number of optimization recommendations generated",
		},
		[]string{"type"},
	)

	optimizationJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "optimization",
			Name:      "jobs_total",
			Help:      "Total number of optimization jobs by final status",
		},
		[]string{"status"},
	)

	optimizationJobDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "optimization",
			Name:      "job_duration_seconds",
			Help:      "Duration of optimization jobs in seconds",
			Buckets:   []float64{.001, .01, .05, .1, .5, 1, 5, 10, 30},
		},
	)

	potentialSavings = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "optimization",
			Name:      "potential_savings",
			Help:      "Potential monthly savings from the latest summary",
		},
		[]string{"organization"},
	)

	// Scheduler metrics
	scheduledRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "runs_total",
			Help:      "Total number of scheduled analysis runs",
		},
		[]string{"status"},
	)

	// Billing ingestion metrics
	costFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "cost_fetches_total",
			Help:      "Total number of cloud billing fetches",
		},
		[]string{"provider", "status"},
	)

	costSamplesFetched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "cost_samples_total",
			Help:      "Total number of cost samples pulled from billing APIs",
		},
		[]string{"provider"},
	)

	// Database metrics
	dbQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation", "table"},
	)
)

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware returns a middleware that records Prometheus metrics
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()

		// Get route pattern from chi
		routePattern := ""
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			routePattern = rctx.RoutePattern()
		}
		if routePattern == "" {
			routePattern = "unknown"
		}

		status := strconv.Itoa(wrapped.statusCode)

		httpRequestsTotal.WithLabelValues(r.Method, routePattern, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, routePattern, status).Observe(duration)
	})
}

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordAnomaly records one detected anomaly
func RecordAnomaly(severity, anomalyType string) {
	anomaliesDetectedTotal.WithLabelValues(severity, anomalyType).Inc()
}

// RecordDetectionDuration records the duration of a detection run
func RecordDetectionDuration(duration time.Duration) {
	detectionDuration.Observe(duration.Seconds())
}

// RecordSkippedResource records a resource excluded from detection
func RecordSkippedResource(reason string) {
	resourcesSkippedTotal.WithLabelValues(reason).Inc()
}

// RecordRecommendation records one generated recommendation
func RecordRecommendation(recommendationType string) {
	recommendationsGeneratedTotal.WithLabelValues(recommendationType).Inc()
}

// RecordOptimizationJob records a finished optimization job
func RecordOptimizationJob(status string, duration time.Duration) {
	optimizationJobsTotal.WithLabelValues(status).Inc()
	optimizationJobDuration.Observe(duration.Seconds())
}

// SetPotentialSavings sets the potential savings gauge for an organization
func SetPotentialSavings(organizationID string, amount float64) {
	potentialSavings.WithLabelValues(organizationID).Set(amount)
}

// RecordScheduledRun records a scheduled analysis run
func RecordScheduledRun(status string) {
	scheduledRunsTotal.WithLabelValues(status).Inc()
}

// RecordCostFetch records one billing API fetch and the samples it returned
func RecordCostFetch(provider, status string, samples int) {
	costFetchTotal.WithLabelValues(provider, status).Inc()
	costSamplesFetched.WithLabelValues(provider).Add(float64(samples))
}

// RecordDBQuery records a database query duration
func RecordDBQuery(operation, table string, duration time.Duration) {
	dbQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}
