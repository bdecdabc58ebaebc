// Package compliance implements the Green Loan Principles rules: use of
// proceeds validation, the six DNSH criteria, carbon lock-in risk and the
// combined eligibility verdict. Every check is a pure function over Tables.
package compliance

import (
	"strings"

	"github.com/kirillkom/green-loan-compliance/internal/core/domain"
)

type Engine struct {
	tables Tables
}

func NewEngine(tables Tables) *Engine {
	return &Engine{tables: tables}
}

func (e *Engine) Tables() Tables {
	return e.tables
}

// IsGLPCategory reports whether name is one of the configured categories.
func (e *Engine) IsGLPCategory(name string) bool {
	for _, c := range e.tables.Categories {
		if c.Name == name {
			return true
		}
	}
	return false
}

// AssessEligibility combines use of proceeds, DNSH and carbon lock-in into
// one verdict.
func (e *Engine) AssessEligibility(fields domain.ProjectFields, extracted string) domain.GLPEligibilityResult {
	issues := []string{}
	recommendations := []string{}

	uop := e.ValidateUseOfProceeds(fields.UseOfProceeds, fields.Sector)
	if !uop.IsValid {
		issues = append(issues, uop.Assessment)
	}
	if len(uop.RedFlags) > 0 {
		issues = append(issues, "Red flags: "+strings.Join(uop.RedFlags, ", "))
	}

	dnsh := e.AssessDNSH(fields, extracted)
	if !dnsh.OverallPass {
		failed := make([]string, 0, dnsh.FailedCount)
		for _, c := range dnsh.Failed() {
			failed = append(failed, string(c))
		}
		issues = append(issues, "DNSH criteria failed: "+strings.Join(failed, ", "))
	}
	if dnsh.UnclearCount > 0 {
		recommendations = append(recommendations, "Provide additional documentation for unclear DNSH criteria.")
	}

	lockin := e.AssessCarbonLockin(fields, extracted)
	switch lockin.RiskLevel {
	case domain.RiskHigh:
		issues = append(issues, lockin.Assessment)
		recommendations = append(recommendations, lockin.Recommendation)
	case domain.RiskMedium:
		recommendations = append(recommendations, lockin.Recommendation)
	}

	eligible := uop.IsValid && dnsh.OverallPass && lockin.RiskLevel != domain.RiskHigh
	if eligible {
		recommendations = append(recommendations,
			"Proceed with standard GLP documentation requirements.",
			"Ensure annual reporting on use of proceeds and environmental impact.",
		)
	}

	return domain.GLPEligibilityResult{
		IsEligible:         eligible,
		Category:           uop.Category,
		Confidence:         uop.Confidence,
		UseOfProceedsValid: uop.IsValid,
		DNSHPass:           dnsh.OverallPass,
		CarbonLockinRisk:   lockin.RiskLevel,
		Issues:             issues,
		Recommendations:    recommendations,
	}
}

func combinedText(fields domain.ProjectFields, extracted string) string {
	return strings.ToLower(fields.UseOfProceeds + " " + extracted)
}
