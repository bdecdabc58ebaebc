package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	answersTotal       *prometheus.CounterVec
	answerConfidence   *prometheus.HistogramVec
	retrievedChunks    *prometheus.HistogramVec
	extractionDuration *prometheus.HistogramVec
	claimsTotal        *prometheus.CounterVec
	assessmentsTotal   *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "glc",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "glc",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "glc",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	answersTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "glc",
			Subsystem: "extraction",
			Name:      "answers_total",
			Help:      "Total answered questions by winning strategy.",
		},
		[]string{"service", "endpoint", "strategy"},
	)
	answerConfidence := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "glc",
			Subsystem: "extraction",
			Name:      "answer_confidence",
			Help:      "Distribution of answer confidence.",
			Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1},
		},
		[]string{"service", "endpoint"},
	)
	retrievedChunks := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "glc",
			Subsystem: "extraction",
			Name:      "retrieved_chunks",
			Help:      "Distribution of retrieved chunks per search.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
		[]string{"service", "endpoint"},
	)
	extractionDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "glc",
			Subsystem: "extraction",
			Name:      "duration_seconds",
			Help:      "Question answering duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "endpoint"},
	)
	claimsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "glc",
			Subsystem: "extraction",
			Name:      "claims_total",
			Help:      "Total verified claims by status.",
		},
		[]string{"service", "status"},
	)
	assessmentsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "glc",
			Subsystem: "assessment",
			Name:      "scores_total",
			Help:      "Total ESG scores computed by grade.",
		},
		[]string{"service", "grade"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		answersTotal,
		answerConfidence,
		retrievedChunks,
		extractionDuration,
		claimsTotal,
		assessmentsTotal,
	)

	return &HTTPServerMetrics{
		registry:           registry,
		requestTotal:       requestTotal,
		requestDuration:    requestDuration,
		requestInFlight:    requestInFlight,
		answersTotal:       answersTotal,
		answerConfidence:   answerConfidence,
		retrievedChunks:    retrievedChunks,
		extractionDuration: extractionDuration,
		claimsTotal:        claimsTotal,
		assessmentsTotal:   assessmentsTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registerer exposes the registry for collectors owned by other packages.
func (m *HTTPServerMetrics) Registerer() prometheus.Registerer {
	return m.registry
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// normalizePath folds loan and job ids so label cardinality stays bounded.
func normalizePath(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) >= 3 && parts[0] == "v1" {
		switch parts[1] {
		case "loans":
			parts[2] = "{loan_id}"
			if len(parts) >= 5 && parts[3] == "sources" {
				parts[4] = "{source}"
			}
		case "jobs":
			parts[2] = "{job_id}"
		}
	}
	return "/" + strings.Join(parts, "/")
}

func (m *HTTPServerMetrics) RecordAnswer(service, endpoint, strategy string, confidence float64, duration time.Duration) {
	if strategy == "" {
		strategy = "unknown"
	}
	m.answersTotal.WithLabelValues(service, endpoint, strategy).Inc()
	m.answerConfidence.WithLabelValues(service, endpoint).Observe(confidence)
	m.extractionDuration.WithLabelValues(service, endpoint).Observe(duration.Seconds())
}

func (m *HTTPServerMetrics) RecordRetrieval(service, endpoint string, hits int) {
	m.retrievedChunks.WithLabelValues(service, endpoint).Observe(float64(hits))
}

func (m *HTTPServerMetrics) RecordClaim(service, status string) {
	if status == "" {
		status = "unknown"
	}
	m.claimsTotal.WithLabelValues(service, status).Inc()
}

func (m *HTTPServerMetrics) RecordAssessment(service, grade string) {
	if grade == "" {
		grade = "unknown"
	}
	m.assessmentsTotal.WithLabelValues(service, grade).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}
