package scoring

import "github.com/kirillkom/green-loan-compliance/internal/core/domain"

// TransitionScore grades how credible the borrower's climate transition is
// from governance, alignment, emissions data maturity and target ambition.
// Each part is capped at 25.
func (e *Engine) TransitionScore(fields domain.ProjectFields, extracted string) domain.TransitionScore {
	eligible := e.rules.AssessEligibility(fields, extracted).IsEligible
	sectorRisk := e.rules.SectorRisk(fields.Sector).Level
	return transitionScore(fields, eligible, sectorRisk)
}

func transitionScore(fields domain.ProjectFields, eligible bool, sectorRisk domain.RiskLevel) domain.TransitionScore {
	q := fields.Questionnaire

	governance := 0.0
	if q.Is("q_adopt_ghg_protocol", "yes") {
		governance += 8
	}
	if q.Is("q_published_climate_disclosures", "yes") {
		governance += 8
	}
	switch {
	case q.Is("q_regulatory_compliance", "fully_compliant"):
		governance += 9
	case q.Is("q_regulatory_compliance", "in_progress"):
		governance += 5
	}

	alignment := 0.0
	if eligible {
		alignment += 15
	}
	if q.Is("q_timebound_targets", "yes") {
		alignment += 5
	}
	if q.Is("q_phaseout_highcarbon", "yes") {
		alignment += 5
	}

	emissions := 0.0
	if fields.BaselineYear > 0 {
		emissions += 10
	}
	if fields.TargetReduction != "" {
		emissions += 10
	}
	switch sectorRisk {
	case domain.RiskLow:
		emissions += 5
	case domain.RiskMedium:
		emissions += 3
	}

	ambition := ambitionPoints(fields.TargetReduction.String())

	governance, alignment, emissions, ambition = min(25, governance), min(25, alignment), min(25, emissions), min(25, ambition)
	total := round(governance+alignment+emissions+ambition, 1)

	return domain.TransitionScore{
		Total:      total,
		Governance: governance,
		Alignment:  alignment,
		Emissions:  emissions,
		Ambition:   ambition,
		Grade:      Grade(total),
		Assessment: transitionAssessment(total),
	}
}

func ambitionPoints(reduction string) float64 {
	pct, ok := ParseReduction(reduction)
	if !ok {
		return 0
	}
	switch {
	case pct >= 50:
		return 25
	case pct >= 30:
		return 20
	case pct >= 20:
		return 15
	case pct >= 10:
		return 10
	case pct > 0:
		return 5
	default:
		return 0
	}
}

func transitionAssessment(total float64) string {
	switch {
	case total >= 70:
		return "Strong transition credibility with clear climate governance and ambitious targets."
	case total >= 50:
		return "Moderate transition evidence. Consider strengthening climate disclosures and targets."
	default:
		return "Limited transition evidence. Recommend establishing baseline data and science-based targets."
	}
}
