package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "quizzer",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "quizzer",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "quizzer",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	quizGenerations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "quizzer",
			Subsystem: "quizzes",
			Name:      "generations_total",
			Help:      "Total number of quiz generation attempts.",
		},
		[]string{"outcome"},
	)

	submissions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "quizzer",
			Subsystem: "quizzes",
			Name:      "submissions_total",
			Help:      "Total number of scored quiz submissions.",
		},
	)

	aiRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "quizzer",
			Subsystem: "ai",
			Name:      "requests_total",
			Help:      "Total number of question generator API calls.",
		},
		[]string{"status"},
	)

	aiDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "quizzer",
			Subsystem: "ai",
			Name:      "request_duration_seconds",
			Help:      "Duration of question generator API calls.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
		},
		[]string{"status"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		quizGenerations,
		submissions,
		aiRequests,
		aiDuration,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler with HTTP metrics collection.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		path := canonicalPath(r.URL.Path)
		method := strings.ToUpper(r.Method)

		httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	})
}

// RecordQuizGeneration records the outcome of a quiz generation attempt.
func RecordQuizGeneration(outcome string) {
	quizGenerations.WithLabelValues(outcome).Inc()
}

// RecordSubmission records a scored submission.
func RecordSubmission() {
	submissions.Inc()
}

// ObserveAIRequest records one generator API call.
func ObserveAIRequest(status string, duration time.Duration) {
	if duration <= 0 {
		duration = time.Millisecond
	}
	aiRequests.WithLabelValues(status).Inc()
	aiDuration.WithLabelValues(status).Observe(duration.Seconds())
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// canonicalPath collapses resource identifiers so the label set stays
// bounded.
func canonicalPath(raw string) string {
	if raw == "" || raw == "/" {
		return "/"
	}
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return "/"
	}
	parts := strings.Split(trimmed, "/")
	if parts[0] != "quiz" {
		return "/" + strings.Join(parts, "/")
	}
	if len(parts) == 1 {
		return "/quiz"
	}
	if parts[1] == "generate" {
		return "/quiz/generate"
	}
	if len(parts) == 2 {
		return "/quiz/:id"
	}
	return "/quiz/:id/" + parts[2]
}
