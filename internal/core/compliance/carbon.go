package compliance

import (
	"strings"

	"github.com/kirillkom/green-loan-compliance/internal/core/domain"
)

// AssessCarbonLockin scores the risk that the financed asset entrenches
// fossil infrastructure. A transition plan changes the wording only.
func (e *Engine) AssessCarbonLockin(fields domain.ProjectFields, extracted string) domain.CarbonLockinResult {
	text := combinedText(fields, extracted)
	sector := strings.ToLower(fields.Sector)

	indicators := matches(text, e.tables.LockinIndicators)
	if indicators == nil {
		indicators = []string{}
	}
	highRiskSector := containsAny(sector, e.tables.HighRiskSectors)
	transition := containsAny(text, e.tables.TransitionPhrases)

	out := domain.CarbonLockinResult{
		IndicatorsFound:   indicators,
		HasTransitionPlan: transition,
	}
	switch {
	case len(indicators) >= 2 || (len(indicators) > 0 && highRiskSector):
		out.RiskLevel = domain.RiskHigh
		out.Assessment = "High carbon lock-in risk identified. Indicators: " + strings.Join(indicators, ", ") +
			". This investment may delay climate transition and create stranded asset risk."
		out.Recommendation = "Consider alternative low-carbon investments or require detailed transition plan."
	case len(indicators) > 0 || highRiskSector:
		out.RiskLevel = domain.RiskMedium
		if transition {
			out.Assessment = "Moderate carbon lock-in risk with transition elements identified. Project includes some transition planning."
			out.Recommendation = "Require detailed transition timeline and interim targets."
		} else {
			out.Assessment = "Moderate carbon lock-in risk. Sector or activity may pose transition risk."
			out.Recommendation = "Request transition strategy and alignment with Paris Agreement targets."
		}
	default:
		out.RiskLevel = domain.RiskLow
		out.Assessment = "Low carbon lock-in risk. No significant fossil fuel infrastructure identified."
		out.Recommendation = "Standard monitoring applies."
	}
	return out
}
