package httpadapter

import (
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/green-loan-compliance/internal/core/domain"
)

const multipartMemory = 32 << 20

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	if rt.cfg.APIMaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, rt.cfg.APIMaxUploadBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart form expected"})
		return
	}
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	doc, err := rt.svc.Ingest.Upload(r.Context(), r.PathValue("loan_id"), fileHeader.Filename, r.FormValue("doc_type"), file)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (rt *Router) submitJob(w http.ResponseWriter, r *http.Request) {
	var fields domain.ProjectFields
	if !decodeJSON(w, r, &fields) {
		return
	}
	job, err := rt.svc.Ingest.Submit(r.Context(), r.PathValue("loan_id"), fields)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, job)
}

func (rt *Router) getJob(w http.ResponseWriter, r *http.Request) {
	job, err := rt.svc.Jobs.GetByID(r.Context(), r.PathValue("job_id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (rt *Router) search(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query   string `json:"query"`
		K       int    `json:"k"`
		DocType string `json:"doc_type"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
		return
	}

	hits, err := rt.svc.Index.Search(r.Context(), domain.SearchQuery{
		Text:    req.Query,
		LoanID:  r.PathValue("loan_id"),
		K:       req.K,
		DocType: req.DocType,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordRetrieval(serviceName, "search", len(hits))
	}
	writeJSON(w, http.StatusOK, map[string]any{"hits": hits})
}

func (rt *Router) answer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Question string `json:"question"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	started := time.Now()
	res, err := rt.svc.Extraction.Answer(r.Context(), req.Question, r.PathValue("loan_id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	rt.recordAnswer("answer", res, started)
	writeJSON(w, http.StatusOK, res)
}

func (rt *Router) extractAll(w http.ResponseWriter, r *http.Request) {
	extractions, err := rt.svc.Extraction.ExtractAll(r.Context(), r.PathValue("loan_id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"extractions": extractions})
}

func (rt *Router) verifyClaim(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Claim string `json:"claim"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Claim) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "claim is required"})
		return
	}

	res, err := rt.svc.Extraction.VerifyClaim(r.Context(), req.Claim, r.PathValue("loan_id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordClaim(serviceName, string(res.Conclusion))
	}
	writeJSON(w, http.StatusOK, res)
}

func (rt *Router) clearLoan(w http.ResponseWriter, r *http.Request) {
	removed, err := rt.svc.Index.ClearLoan(r.Context(), r.PathValue("loan_id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

func (rt *Router) removeSource(w http.ResponseWriter, r *http.Request) {
	removed, err := rt.svc.Index.RemoveSource(r.Context(), r.PathValue("loan_id"), r.PathValue("source"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

func (rt *Router) loanStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, rt.svc.Index.Stats(r.PathValue("loan_id")))
}

func (rt *Router) globalStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, rt.svc.Index.GlobalStats())
}

func (rt *Router) latestAssessment(w http.ResponseWriter, r *http.Request) {
	a, err := rt.svc.Assessment.Latest(r.Context(), r.PathValue("loan_id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}
