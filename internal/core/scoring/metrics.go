package scoring

import "github.com/kirillkom/green-loan-compliance/internal/core/domain"

// CarbonIntensity is tCO2e per million of revenue, 0 without revenue.
func CarbonIntensity(total, revenue float64) float64 {
	if revenue <= 0 {
		return 0
	}
	return round(total/revenue*1_000_000, 2)
}

func (e *Engine) CarbonMetrics(fields domain.ProjectFields) domain.CarbonMetrics {
	total := fields.TotalEmissions()
	intensity := CarbonIntensity(total, fields.AnnualRevenue)
	benchmark := e.benchmarks.Lookup(fields.Sector).Intensity

	out := domain.CarbonMetrics{
		TotalEmissions:       total,
		Scope1:               fields.Scope1Tco2,
		Scope2:               fields.Scope2Tco2,
		Scope3:               fields.Scope3Tco2,
		CarbonIntensity:      intensity,
		SectorBenchmark:      benchmark,
		BenchmarkPerformance: domain.PerformanceUnknown,
	}
	if total > 0 {
		out.Scope1Pct = round(fields.Scope1Tco2/total*100, 1)
		out.Scope2Pct = round(fields.Scope2Tco2/total*100, 1)
		out.Scope3Pct = round(fields.Scope3Tco2/total*100, 1)
	}

	if intensity > 0 && benchmark > 0 {
		out.PerformanceRatio = round(intensity/benchmark, 2)
		switch {
		case intensity < benchmark*0.8:
			out.BenchmarkPerformance = domain.PerformanceBelow
		case intensity <= benchmark*1.2:
			out.BenchmarkPerformance = domain.PerformanceAt
		default:
			out.BenchmarkPerformance = domain.PerformanceAbove
		}
	}

	if pct, ok := ParseReduction(fields.TargetReduction.String()); ok {
		out.AbsoluteReductionPotential = round(total*pct/100, 2)
		out.IntensityReductionPotential = round(intensity*pct/100, 2)
	}
	return out
}
