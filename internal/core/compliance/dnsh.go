package compliance

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/kirillkom/green-loan-compliance/internal/core/domain"
)

var numberPrinter = message.NewPrinter(language.English)

// AssessDNSH evaluates the six do-no-significant-harm criteria against the
// proceeds description, extracted document text, sector and location.
func (e *Engine) AssessDNSH(fields domain.ProjectFields, extracted string) domain.DNSHSummary {
	in := dnshInput{
		text:     combinedText(fields, extracted),
		sector:   strings.ToLower(fields.Sector),
		location: strings.ToLower(fields.Location),
		total:    fields.TotalEmissions(),
	}
	t := e.tables.DNSH

	results := map[domain.DNSHCriterion]domain.DNSHResult{
		domain.CriterionClimateMitigation: checkMitigation(in, t),
		domain.CriterionClimateAdaptation: checkAdaptation(in, t),
		domain.CriterionWaterUse:          checkWater(in, t),
		domain.CriterionCircularEconomy:   checkCircular(in, t),
		domain.CriterionPollution:         checkPollution(in, t),
		domain.CriterionBiodiversity:      checkBiodiversity(in, t),
	}
	return Summarize(results)
}

// Summarize counts statuses; the assessment passes when nothing failed.
func Summarize(results map[domain.DNSHCriterion]domain.DNSHResult) domain.DNSHSummary {
	summary := domain.DNSHSummary{Results: results}
	for _, r := range results {
		switch r.Status {
		case domain.DNSHPass:
			summary.PassedCount++
		case domain.DNSHFail:
			summary.FailedCount++
		case domain.DNSHUnclear:
			summary.UnclearCount++
		}
	}
	summary.OverallPass = summary.FailedCount == 0
	return summary
}

type dnshInput struct {
	text     string
	sector   string
	location string
	total    float64
}

func result(c domain.DNSHCriterion, status domain.DNSHStatus, evidence, notes string) domain.DNSHResult {
	return domain.DNSHResult{Criterion: c, Status: status, Evidence: evidence, Notes: notes}
}

func checkMitigation(in dnshInput, t DNSHTables) domain.DNSHResult {
	const c = domain.CriterionClimateMitigation
	switch {
	case containsAny(in.text, t.MitigationNegative):
		return result(c, domain.DNSHFail,
			"Negative indicators found in project description",
			"Project may lead to significant GHG emissions")
	case containsAny(in.text, t.MitigationPositive):
		return result(c, domain.DNSHPass,
			"Positive climate indicators: renewable energy, emission reduction",
			numberPrinter.Sprintf("Total reported emissions: %.0f tCO2", in.total))
	default:
		return result(c, domain.DNSHUnclear,
			"Insufficient information on climate impact",
			"Additional documentation required")
	}
}

func checkAdaptation(in dnshInput, t DNSHTables) domain.DNSHResult {
	const c = domain.CriterionClimateAdaptation
	resilient := containsAny(in.text, t.Resilience)
	vulnerable := containsAnyOf(t.Vulnerability, in.location, in.text)
	switch {
	case vulnerable && !resilient:
		return result(c, domain.DNSHUnclear,
			"Project in climate-vulnerable area without clear adaptation measures",
			"Climate risk assessment recommended")
	case resilient:
		return result(c, domain.DNSHPass,
			"Climate resilience measures identified",
			"Project includes adaptation considerations")
	default:
		return result(c, domain.DNSHPass,
			"No significant climate vulnerability identified",
			"Standard climate risk applies")
	}
}

func checkWater(in dnshInput, t DNSHTables) domain.DNSHResult {
	const c = domain.CriterionWaterUse
	intensive := containsAnyOf(t.WaterIntensive, in.sector, in.text)
	mitigated := containsAny(in.text, t.WaterMitigation)
	stressed := containsAnyOf(t.WaterStressed, in.location, in.text)
	switch {
	case intensive && stressed && !mitigated:
		return result(c, domain.DNSHFail,
			"Water-intensive activity in water-stressed region without mitigation",
			"Water impact assessment required")
	case intensive && !mitigated:
		return result(c, domain.DNSHUnclear,
			"Water-intensive sector, mitigation measures not specified",
			"Recommend water management plan documentation")
	default:
		return result(c, domain.DNSHPass, "No significant water impact or mitigation in place", "")
	}
}

func checkCircular(in dnshInput, t DNSHTables) domain.DNSHResult {
	const c = domain.CriterionCircularEconomy
	linear := containsAny(in.text, t.Linear)
	circular := containsAny(in.text, t.Circular)
	switch {
	case linear && !circular:
		return result(c, domain.DNSHFail,
			"Linear economy indicators without circular measures",
			"Consider waste reduction strategies")
	case circular:
		return result(c, domain.DNSHPass, "Circular economy principles identified", "")
	default:
		return result(c, domain.DNSHPass, "No significant circular economy concerns", "")
	}
}

func checkPollution(in dnshInput, t DNSHTables) domain.DNSHResult {
	const c = domain.CriterionPollution
	if containsAny(in.sector, t.PollutingSectors) && !containsAny(in.text, t.PollutionControls) {
		return result(c, domain.DNSHUnclear,
			"Potentially polluting sector without documented controls",
			"Pollution prevention measures should be documented")
	}
	return result(c, domain.DNSHPass, "No significant pollution concerns or controls in place", "")
}

func checkBiodiversity(in dnshInput, t DNSHTables) domain.DNSHResult {
	const c = domain.CriterionBiodiversity
	sensitive := containsAnyOf(t.Sensitive, in.location, in.text)
	protected := containsAny(in.text, t.Protection)
	switch {
	case sensitive && !protected:
		return result(c, domain.DNSHFail,
			"Project in ecologically sensitive area without documented protection",
			"Environmental Impact Assessment required")
	case protected:
		return result(c, domain.DNSHPass, "Biodiversity protection measures identified", "")
	default:
		return result(c, domain.DNSHPass, "No significant biodiversity concerns identified", "")
	}
}
