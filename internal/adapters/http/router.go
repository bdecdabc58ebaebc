package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/kirillkom/green-loan-compliance/internal/config"
	"github.com/kirillkom/green-loan-compliance/internal/core/domain"
	"github.com/kirillkom/green-loan-compliance/internal/core/ports"
	"github.com/kirillkom/green-loan-compliance/internal/observability/metrics"
)

const (
	serviceName     = "api"
	maxJSONBodySize = 1 << 20
)

// AssessmentReader is the assessment surface the API needs on top of the
// stateless engines.
type AssessmentReader interface {
	ports.AssessmentService
	Latest(ctx context.Context, loanID string) (*domain.LoanAssessment, error)
}

// Services bundles the inbound use cases served over HTTP.
type Services struct {
	Ingest     ports.LoanIngestor
	Jobs       ports.JobReader
	Index      ports.IndexService
	Extraction ports.ExtractionService
	Assessment AssessmentReader
}

type Router struct {
	cfg     config.Config
	svc     Services
	metrics *metrics.HTTPServerMetrics
	openAPI []byte
}

// NewRouter wires handlers. m may be nil, in which case no metrics are
// recorded and /metrics is not served.
func NewRouter(cfg config.Config, svc Services, m *metrics.HTTPServerMetrics) *Router {
	return &Router{
		cfg:     cfg,
		svc:     svc,
		metrics: m,
		openAPI: openAPISpec,
	}
}

type route struct {
	method  string
	path    string
	handler http.HandlerFunc
}

func (rt *Router) routes() []route {
	return []route{
		{http.MethodPost, "/v1/loans/{loan_id}/documents", rt.uploadDocument},
		{http.MethodPost, "/v1/loans/{loan_id}/jobs", rt.submitJob},
		{http.MethodGet, "/v1/jobs/{job_id}", rt.getJob},
		{http.MethodPost, "/v1/loans/{loan_id}/search", rt.search},
		{http.MethodPost, "/v1/loans/{loan_id}/answer", rt.answer},
		{http.MethodPost, "/v1/loans/{loan_id}/extract", rt.extractAll},
		{http.MethodPost, "/v1/loans/{loan_id}/verify", rt.verifyClaim},
		{http.MethodDelete, "/v1/loans/{loan_id}/index", rt.clearLoan},
		{http.MethodDelete, "/v1/loans/{loan_id}/sources/{source}", rt.removeSource},
		{http.MethodGet, "/v1/loans/{loan_id}/stats", rt.loanStats},
		{http.MethodGet, "/v1/loans/{loan_id}/assessment", rt.latestAssessment},
		{http.MethodGet, "/v1/stats", rt.globalStats},
		{http.MethodPost, "/v1/assess", rt.assess},
		{http.MethodPost, "/v1/spt", rt.calibrateSPT},
		{http.MethodPost, "/v1/transition", rt.transition},
		{http.MethodPost, "/v1/carbon-metrics", rt.carbonMetrics},
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.HandleFunc("GET /openapi.yaml", rt.serveOpenAPI)
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	}
	for _, r := range rt.routes() {
		mux.HandleFunc(r.method+" "+r.path, r.handler)
	}

	var handler http.Handler = mux
	handler = timeoutMiddleware(handler, rt.cfg.APIRequestTimeout)
	handler = backpressureMiddleware(handler, rt.cfg.APIMaxInFlight, rt.cfg.APIBackpressureWait)
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) serveOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(rt.openAPI)
}

func (rt *Router) recordAnswer(endpoint string, res domain.ExtractionResult, started time.Time) {
	if rt.metrics == nil {
		return
	}
	rt.metrics.RecordAnswer(serviceName, endpoint, string(res.Strategy), res.Confidence, time.Since(started))
	rt.metrics.RecordRetrieval(serviceName, endpoint, len(res.Sources))
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxJSONBodySize)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "request body is required"})
			return false
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		slog.Error("http_handler_failed",
			"request_id", requestIDFromContext(r.Context()),
			"path", r.URL.Path,
			"error", err.Error(),
		)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
