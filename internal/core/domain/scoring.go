package domain

type ESGBreakdown struct {
	CompletenessWeighted  float64 `json:"completeness_weighted"`
	VerifiabilityWeighted float64 `json:"verifiability_weighted"`
	GLPAlignmentWeighted  float64 `json:"glp_alignment_weighted"`
	DNSHPenalty           float64 `json:"dnsh_penalty"`
	CarbonPenalty         float64 `json:"carbon_penalty"`
}

type ESGScore struct {
	TotalScore      float64      `json:"total_score"`
	Completeness    float64      `json:"completeness_score"`
	Verifiability   float64      `json:"verifiability_score"`
	GLPAlignment    float64      `json:"glp_alignment_score"`
	DNSHPenalty     float64      `json:"dnsh_penalty"`
	CarbonPenalty   float64      `json:"carbon_penalty"`
	Grade           string       `json:"grade"`
	Breakdown       ESGBreakdown `json:"breakdown"`
	Recommendations []string     `json:"recommendations"`
}

type AmbitionLevel string

const (
	AmbitionLow          AmbitionLevel = "low"
	AmbitionModerate     AmbitionLevel = "moderate"
	AmbitionAmbitious    AmbitionLevel = "ambitious"
	AmbitionScienceBased AmbitionLevel = "science-based"
)

type SPTCalibration struct {
	BaselineEmissions   float64       `json:"baseline_emissions"`
	TargetEmissions     float64       `json:"target_emissions"`
	BaselineYear        int           `json:"baseline_year"`
	TargetYear          int           `json:"target_year"`
	ReductionPercentage float64       `json:"reduction_percentage"`
	AnnualReductionRate float64       `json:"annual_reduction_rate"`
	IsScienceBased      bool          `json:"is_science_based"`
	AmbitionLevel       AmbitionLevel `json:"ambition_level"`
	PathwayAlignment    float64       `json:"pathway_alignment"`
}

type TransitionScore struct {
	Total      float64 `json:"total"`
	Governance float64 `json:"governance"`
	Alignment  float64 `json:"alignment"`
	Emissions  float64 `json:"emissions"`
	Ambition   float64 `json:"ambition"`
	Grade      string  `json:"grade"`
	Assessment string  `json:"assessment"`
}

type BenchmarkPerformance string

const (
	PerformanceBelow   BenchmarkPerformance = "below"
	PerformanceAt      BenchmarkPerformance = "at"
	PerformanceAbove   BenchmarkPerformance = "above"
	PerformanceUnknown BenchmarkPerformance = "unknown"
)

type CarbonMetrics struct {
	TotalEmissions              float64              `json:"total_emissions"`
	Scope1                      float64              `json:"scope1"`
	Scope2                      float64              `json:"scope2"`
	Scope3                      float64              `json:"scope3"`
	Scope1Pct                   float64              `json:"scope1_pct"`
	Scope2Pct                   float64              `json:"scope2_pct"`
	Scope3Pct                   float64              `json:"scope3_pct"`
	CarbonIntensity             float64              `json:"carbon_intensity"`
	SectorBenchmark             float64              `json:"sector_benchmark"`
	BenchmarkPerformance        BenchmarkPerformance `json:"benchmark_performance"`
	PerformanceRatio            float64              `json:"performance_ratio"`
	AbsoluteReductionPotential  float64              `json:"absolute_reduction_potential"`
	IntensityReductionPotential float64              `json:"intensity_reduction_potential"`
}

// SectorBenchmark is the carbon intensity reference for one sector, in
// tCO2e per million of revenue.
type SectorBenchmark struct {
	Intensity   float64   `json:"intensity" yaml:"intensity"`
	Risk        RiskLevel `json:"risk" yaml:"risk"`
	Pathway2030 float64   `json:"pathway_2030" yaml:"pathway_2030"`
}
