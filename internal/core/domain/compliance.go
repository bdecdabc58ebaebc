package domain

type DNSHStatus string

const (
	DNSHPass    DNSHStatus = "pass"
	DNSHFail    DNSHStatus = "fail"
	DNSHUnclear DNSHStatus = "unclear"
)

type DNSHCriterion string

const (
	CriterionClimateMitigation DNSHCriterion = "climate_mitigation"
	CriterionClimateAdaptation DNSHCriterion = "climate_adaptation"
	CriterionWaterUse          DNSHCriterion = "water_use"
	CriterionCircularEconomy   DNSHCriterion = "circular_economy"
	CriterionPollution         DNSHCriterion = "pollution"
	CriterionBiodiversity      DNSHCriterion = "biodiversity"
)

// DNSHCriteria lists the criteria in evaluation order.
var DNSHCriteria = []DNSHCriterion{
	CriterionClimateMitigation,
	CriterionClimateAdaptation,
	CriterionWaterUse,
	CriterionCircularEconomy,
	CriterionPollution,
	CriterionBiodiversity,
}

type DNSHResult struct {
	Criterion DNSHCriterion `json:"criterion"`
	Status    DNSHStatus    `json:"status"`
	Evidence  string        `json:"evidence"`
	Notes     string        `json:"notes"`
}

type DNSHSummary struct {
	OverallPass  bool                         `json:"overall_pass"`
	PassedCount  int                          `json:"passed_count"`
	FailedCount  int                          `json:"failed_count"`
	UnclearCount int                          `json:"unclear_count"`
	Results      map[DNSHCriterion]DNSHResult `json:"results"`
}

// Failed returns the failed criteria in evaluation order.
func (s DNSHSummary) Failed() []DNSHCriterion {
	var out []DNSHCriterion
	for _, c := range DNSHCriteria {
		if r, ok := s.Results[c]; ok && r.Status == DNSHFail {
			out = append(out, c)
		}
	}
	return out
}

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// SectorRisk is the inherent transition risk of a borrower's sector.
type SectorRisk struct {
	Level RiskLevel `json:"level"`
	Score int       `json:"score"`
}

type CarbonLockinResult struct {
	RiskLevel         RiskLevel `json:"risk_level"`
	IndicatorsFound   []string  `json:"indicators_found"`
	HasTransitionPlan bool      `json:"has_transition_plan"`
	Assessment        string    `json:"assessment"`
	Recommendation    string    `json:"recommendation"`
}

type UseOfProceedsResult struct {
	IsValid         bool     `json:"is_valid"`
	Category        string   `json:"category"`
	Confidence      float64  `json:"confidence"`
	GreenIndicators []string `json:"green_indicators"`
	RedFlags        []string `json:"red_flags"`
	Assessment      string   `json:"assessment"`
}

type GLPEligibilityResult struct {
	IsEligible         bool      `json:"is_eligible"`
	Category           string    `json:"category"`
	Confidence         float64   `json:"confidence"`
	UseOfProceedsValid bool      `json:"use_of_proceeds_valid"`
	DNSHPass           bool      `json:"dnsh_pass"`
	CarbonLockinRisk   RiskLevel `json:"carbon_lockin_risk"`
	Issues             []string  `json:"issues"`
	Recommendations    []string  `json:"recommendations"`
}
