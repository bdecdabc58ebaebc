package scoring

import (
	"math"
	"strconv"
	"strings"

	"github.com/kirillkom/green-loan-compliance/internal/core/domain"
)

const (
	// DefaultBaseYear is used when the application gives no baseline year.
	DefaultBaseYear = 2025
	// DefaultHorizonYears is added to the base year when no target year is set.
	DefaultHorizonYears = 5

	ScienceBasedRate = 4.2
	strongRate       = 7.0
	moderateRate     = 2.5
)

// ParseReduction reads a reduction percentage such as "30", "30.5" or
// "30%". Anything else reports ok=false.
func ParseReduction(raw string) (float64, bool) {
	s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "%"))
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// CalibrateSPT derives the target trajectory for a reduction commitment.
// It returns nil when the baseline or the reduction is missing or
// malformed.
func (e *Engine) CalibrateSPT(baseline float64, reduction string, baselineYear, targetYear int, sector string) *domain.SPTCalibration {
	pct, ok := ParseReduction(reduction)
	if !ok || baseline <= 0 {
		return nil
	}

	baseYear := baselineYear
	if baseYear <= 0 {
		baseYear = DefaultBaseYear
	}
	if targetYear <= 0 {
		targetYear = baseYear + DefaultHorizonYears
	}
	years := max(1, targetYear-baseYear)

	target := baseline * (1 - pct/100)
	rate := 0.0
	if target >= 0 {
		rate = (1 - math.Pow(target/baseline, 1/float64(years))) * 100
	}

	return &domain.SPTCalibration{
		BaselineEmissions:   baseline,
		TargetEmissions:     round(target, 2),
		BaselineYear:        baseYear,
		TargetYear:          targetYear,
		ReductionPercentage: pct,
		AnnualReductionRate: round(rate, 2),
		IsScienceBased:      rate >= ScienceBasedRate,
		AmbitionLevel:       ambitionLevel(rate),
		PathwayAlignment:    round(e.pathwayAlignment(pct, sector), 1),
	}
}

func ambitionLevel(rate float64) domain.AmbitionLevel {
	switch {
	case rate >= strongRate:
		return domain.AmbitionScienceBased
	case rate >= ScienceBasedRate:
		return domain.AmbitionAmbitious
	case rate >= moderateRate:
		return domain.AmbitionModerate
	default:
		return domain.AmbitionLow
	}
}

// pathwayAlignment expresses the committed reduction as a share of the
// reduction the sector needs to reach its 2030 pathway.
func (e *Engine) pathwayAlignment(pct float64, sector string) float64 {
	b := e.benchmarks.Lookup(sector)
	if b.Intensity <= 0 {
		return 50
	}
	required := (b.Intensity - b.Pathway2030) / b.Intensity * 100
	if required <= 0 {
		return 100
	}
	return min(100, pct/required*100)
}
