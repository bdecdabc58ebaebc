package httpadapter

import (
	"net/http"

	"github.com/kirillkom/green-loan-compliance/internal/core/domain"
)

type assessRequest struct {
	Fields   domain.ProjectFields `json:"fields"`
	Text     string               `json:"text"`
	Claims   []domain.Claim       `json:"claims"`
	Evidence []domain.Evidence    `json:"evidence"`
}

type assessResponse struct {
	ESG                domain.ESGScore             `json:"esg"`
	Eligibility        domain.GLPEligibilityResult `json:"eligibility"`
	UseOfProceeds      domain.UseOfProceedsResult  `json:"use_of_proceeds"`
	DNSH               domain.DNSHSummary          `json:"dnsh"`
	CarbonLockin       domain.CarbonLockinResult   `json:"carbon_lockin"`
	SectorRisk         domain.SectorRisk           `json:"sector_risk"`
	Transition         domain.TransitionScore      `json:"transition"`
	CarbonMetrics      domain.CarbonMetrics        `json:"carbon_metrics"`
	QuestionnaireScore float64                     `json:"questionnaire_score"`
}

func (rt *Router) assess(w http.ResponseWriter, r *http.Request) {
	var req assessRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	svc := rt.svc.Assessment
	resp := assessResponse{
		ESG:                svc.Score(req.Fields, req.Claims, req.Evidence, req.Text),
		Eligibility:        svc.AssessGLPEligibility(req.Fields, req.Text),
		UseOfProceeds:      svc.ValidateUseOfProceeds(req.Fields.UseOfProceeds, req.Fields.Sector),
		DNSH:               svc.AssessDNSH(req.Fields, req.Text),
		CarbonLockin:       svc.AssessCarbonLockin(req.Fields, req.Text),
		SectorRisk:         svc.SectorRisk(req.Fields.Sector),
		Transition:         svc.TransitionScore(req.Fields, req.Text),
		CarbonMetrics:      svc.CarbonMetrics(req.Fields),
		QuestionnaireScore: svc.QuestionnaireScore(req.Fields.Questionnaire),
	}
	if rt.metrics != nil {
		rt.metrics.RecordAssessment(serviceName, resp.ESG.Grade)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (rt *Router) calibrateSPT(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Baseline     float64          `json:"baseline_emissions"`
		Reduction    domain.Reduction `json:"target_reduction"`
		BaselineYear int              `json:"baseline_year"`
		TargetYear   int              `json:"target_year"`
		Sector       string           `json:"sector"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	cal := rt.svc.Assessment.CalibrateSPT(req.Baseline, req.Reduction.String(), req.BaselineYear, req.TargetYear, req.Sector)
	if cal == nil {
		writeJSON(w, http.StatusOK, map[string]any{"calibrated": false, "reason": "target not set"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"calibrated": true, "calibration": cal})
}

func (rt *Router) transition(w http.ResponseWriter, r *http.Request) {
	var req assessRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, rt.svc.Assessment.TransitionScore(req.Fields, req.Text))
}

func (rt *Router) carbonMetrics(w http.ResponseWriter, r *http.Request) {
	var req assessRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, rt.svc.Assessment.CarbonMetrics(req.Fields))
}
