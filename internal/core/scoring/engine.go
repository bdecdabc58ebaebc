// Package scoring turns loan fields, extraction claims and compliance
// verdicts into the composite ESG score, SPT calibration, transition
// credibility score and carbon metrics.
package scoring

import (
	"fmt"
	"strings"

	"github.com/kirillkom/green-loan-compliance/internal/core/compliance"
	"github.com/kirillkom/green-loan-compliance/internal/core/domain"
)

// Weights scale the positive ESG sub-scores. They are not normalized: the
// default 0.20/0.25/0.25 split leaves 30 points of headroom that penalties
// are subtracted from.
type Weights struct {
	Completeness  float64
	Verifiability float64
	GLPAlignment  float64
}

func DefaultWeights() Weights {
	return Weights{Completeness: 0.20, Verifiability: 0.25, GLPAlignment: 0.25}
}

func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		"completeness":  w.Completeness,
		"verifiability": w.Verifiability,
		"glp_alignment": w.GLPAlignment,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("weight %s=%v out of [0,1]", name, v)
		}
	}
	if sum := w.Completeness + w.Verifiability + w.GLPAlignment; sum <= 0 || sum > 1+1e-9 {
		return fmt.Errorf("weights must sum to (0,1], got %v", sum)
	}
	return nil
}

// VerifiedConfidence is the claim confidence counted as verified.
const VerifiedConfidence = 0.6

type Engine struct {
	rules      *compliance.Engine
	weights    Weights
	benchmarks Benchmarks
}

func NewEngine(rules *compliance.Engine, weights Weights, benchmarks Benchmarks) *Engine {
	return &Engine{rules: rules, weights: weights, benchmarks: benchmarks}
}

// Score computes the composite ESG score. Missing inputs lower sub-scores
// toward their defaults; Score never fails.
func (e *Engine) Score(fields domain.ProjectFields, claims []domain.Claim, _ []domain.Evidence, extracted string) domain.ESGScore {
	comp := Completeness(fields)
	verif := Verifiability(claims)
	glp := e.glpAlignment(fields, extracted)
	dnshPenalty := DNSHPenalty(e.rules.AssessDNSH(fields, extracted))
	carbonPenalty := CarbonPenalty(e.rules.AssessCarbonLockin(fields, extracted).RiskLevel)

	breakdown := domain.ESGBreakdown{
		CompletenessWeighted:  round(comp*e.weights.Completeness, 2),
		VerifiabilityWeighted: round(verif*e.weights.Verifiability, 2),
		GLPAlignmentWeighted:  round(glp*e.weights.GLPAlignment, 2),
		DNSHPenalty:           dnshPenalty,
		CarbonPenalty:         carbonPenalty,
	}
	total := clamp(
		comp*e.weights.Completeness+verif*e.weights.Verifiability+glp*e.weights.GLPAlignment-dnshPenalty-carbonPenalty,
		0, 100,
	)

	var recs []string
	if comp < 80 {
		recs = append(recs, "Improve data completeness")
	}
	if verif < 60 {
		recs = append(recs, "Upload supporting documents")
	}
	if dnshPenalty > 0 {
		recs = append(recs, "Address DNSH concerns")
	}
	if len(recs) == 0 {
		recs = []string{"Strong ESG profile"}
	}

	total = round(total, 1)
	return domain.ESGScore{
		TotalScore:      total,
		Completeness:    round(comp, 1),
		Verifiability:   round(verif, 1),
		GLPAlignment:    round(glp, 1),
		DNSHPenalty:     dnshPenalty,
		CarbonPenalty:   carbonPenalty,
		Grade:           Grade(total),
		Breakdown:       breakdown,
		Recommendations: recs,
	}
}

// Completeness is the share of required application fields present, plus a
// 10 point bonus when supporting documents exist.
func Completeness(f domain.ProjectFields) float64 {
	present := []bool{
		f.OrgName != "",
		f.ProjectName != "",
		f.AmountRequested != 0,
		f.Currency != "",
		f.PlannedStartDate != "",
		f.ShareholderEntities != 0,
	}
	n := 0
	for _, ok := range present {
		if ok {
			n++
		}
	}
	score := float64(n) / float64(len(present)) * 100
	if f.DocumentCount > 0 {
		score = min(100, score+10)
	}
	return score
}

func Verifiability(claims []domain.Claim) float64 {
	if len(claims) == 0 {
		return 50
	}
	verified := 0
	for _, c := range claims {
		if c.Confidence >= VerifiedConfidence {
			verified++
		}
	}
	return float64(verified) / float64(len(claims)) * 100
}

func (e *Engine) glpAlignment(fields domain.ProjectFields, extracted string) float64 {
	eligibility := e.rules.AssessEligibility(fields, extracted)

	score := 10.0
	if eligibility.IsEligible {
		score = 40 * eligibility.Confidence
	}
	if e.rules.IsGLPCategory(eligibility.Category) {
		score += 20 * eligibility.Confidence
	}
	text := strings.ToLower(fields.UseOfProceeds + " " + extracted)
	if strings.Contains(text, "tracking") || strings.Contains(text, "allocation") {
		score += 20
	}
	if strings.Contains(text, "annual report") || strings.Contains(text, "disclosure") {
		score += 20
	}
	return min(100, score)
}

func DNSHPenalty(summary domain.DNSHSummary) float64 {
	if !summary.OverallPass {
		return 30
	}
	return 5 * float64(summary.UnclearCount)
}

func CarbonPenalty(level domain.RiskLevel) float64 {
	switch level {
	case domain.RiskHigh:
		return 20
	case domain.RiskMedium:
		return 10
	default:
		return 0
	}
}
