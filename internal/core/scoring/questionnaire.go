package scoring

import "github.com/kirillkom/green-loan-compliance/internal/core/domain"

var questionnairePoints = map[string]map[string]float64{
	"q_env_benefits":                  {"high": 10, "medium": 5, "low": 0},
	"q_data_available":                {"comprehensive": 10, "partial": 5, "none": 0},
	"q_regulatory_compliance":         {"fully_compliant": 10, "in_progress": 5, "non_compliant": 0},
	"q_social_risk":                   {"none": 10, "minor": 5, "high": 0},
	"q_rd_low_carbon":                 {"yes": 8},
	"q_union_agreement":               {"yes": 5},
	"q_adopt_ghg_protocol":            {"yes": 10},
	"q_published_climate_disclosures": {"yes": 10},
	"q_timebound_targets":             {"yes": 12},
	"q_phaseout_highcarbon":           {"yes": 10},
	"q_long_lived_highcarbon_assets":  {"no": 5, "yes": -10},
}

// QuestionnaireScore sums the points of known answers. Unknown questions and
// answers score nothing and the total never drops below zero.
func QuestionnaireScore(answers domain.Answers) float64 {
	total := 0.0
	for key, answer := range answers {
		total += questionnairePoints[key][answer]
	}
	return max(0, total)
}
