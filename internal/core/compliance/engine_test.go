package compliance

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kirillkom/green-loan-compliance/internal/core/domain"
)

func newTestEngine() *Engine {
	return NewEngine(DefaultTables())
}

func TestValidateUseOfProceedsGreenProject(t *testing.T) {
	e := newTestEngine()
	got := e.ValidateUseOfProceeds("Construction of a 50MW solar farm with solar panel arrays", "Renewable energy")

	if !got.IsValid {
		t.Fatalf("expected valid proceeds, got %+v", got)
	}
	if got.Category != "Renewable Energy" {
		t.Fatalf("expected Renewable Energy, got %q", got.Category)
	}
	// solar panel, solar farm, renewable energy
	if math.Abs(got.Confidence-0.95) > 1e-9 {
		t.Fatalf("expected confidence 0.95, got %v", got.Confidence)
	}
	if !strings.HasPrefix(got.Assessment, "Project qualifies under GLP category: Renewable Energy.") {
		t.Fatalf("unexpected assessment %q", got.Assessment)
	}
}

func TestValidateUseOfProceedsRedFlag(t *testing.T) {
	e := newTestEngine()
	got := e.ValidateUseOfProceeds("Efficiency upgrade of a coal plant", "Fossil fuel utilities")

	if got.IsValid {
		t.Fatalf("expected invalid proceeds")
	}
	if len(got.RedFlags) != 1 || got.RedFlags[0] != "coal" {
		t.Fatalf("expected coal red flag, got %v", got.RedFlags)
	}
	if got.Assessment != "Project does NOT qualify due to red flags: coal." {
		t.Fatalf("unexpected assessment %q", got.Assessment)
	}
}

func TestMapCategoryUnknownWithoutHits(t *testing.T) {
	e := newTestEngine()
	cat, conf := e.MapCategory("office furniture", "consulting")
	if cat != UnknownCategory || conf != 0 {
		t.Fatalf("expected Unknown/0, got %s/%v", cat, conf)
	}
}

func TestAssessDNSHCoalFailsMitigation(t *testing.T) {
	e := newTestEngine()
	summary := e.AssessDNSH(domain.ProjectFields{UseOfProceeds: "expand coal mine"}, "")

	if summary.Results[domain.CriterionClimateMitigation].Status != domain.DNSHFail {
		t.Fatalf("expected mitigation fail, got %+v", summary.Results[domain.CriterionClimateMitigation])
	}
	if summary.OverallPass {
		t.Fatalf("expected overall fail")
	}
	if summary.PassedCount+summary.FailedCount+summary.UnclearCount != len(domain.DNSHCriteria) {
		t.Fatalf("counts must cover all criteria: %+v", summary)
	}
}

func TestAssessDNSHMitigationPassReportsTotal(t *testing.T) {
	e := newTestEngine()
	fields := domain.ProjectFields{
		UseOfProceeds: "renewable energy plant",
		Scope1Tco2:    1000,
		Scope2Tco2:    500,
		Scope3Tco2:    250,
	}
	got := e.AssessDNSH(fields, "").Results[domain.CriterionClimateMitigation]
	if got.Status != domain.DNSHPass {
		t.Fatalf("expected pass, got %s", got.Status)
	}
	if got.Notes != "Total reported emissions: 1,750 tCO2" {
		t.Fatalf("unexpected notes %q", got.Notes)
	}
}

func TestAssessDNSHWaterAndBiodiversity(t *testing.T) {
	e := newTestEngine()
	fields := domain.ProjectFields{
		UseOfProceeds: "data center cooling expansion",
		Location:      "arid region next to a national park",
	}
	summary := e.AssessDNSH(fields, "")

	if got := summary.Results[domain.CriterionWaterUse].Status; got != domain.DNSHFail {
		t.Fatalf("expected water fail, got %s", got)
	}
	if got := summary.Results[domain.CriterionBiodiversity].Status; got != domain.DNSHFail {
		t.Fatalf("expected biodiversity fail, got %s", got)
	}

	fields.UseOfProceeds += " with water recycling and habitat restoration"
	summary = e.AssessDNSH(fields, "")
	if got := summary.Results[domain.CriterionWaterUse].Status; got != domain.DNSHPass {
		t.Fatalf("expected water pass with mitigation, got %s", got)
	}
	if got := summary.Results[domain.CriterionBiodiversity].Status; got != domain.DNSHPass {
		t.Fatalf("expected biodiversity pass with protection, got %s", got)
	}
}

func TestAssessDNSHUnclearCases(t *testing.T) {
	e := newTestEngine()
	fields := domain.ProjectFields{
		UseOfProceeds: "new production line",
		Sector:        "Chemicals manufacturing",
		Location:      "coastal area",
	}
	summary := e.AssessDNSH(fields, "")
	for _, c := range []domain.DNSHCriterion{
		domain.CriterionClimateMitigation,
		domain.CriterionClimateAdaptation,
		domain.CriterionPollution,
	} {
		if summary.Results[c].Status != domain.DNSHUnclear {
			t.Fatalf("expected %s unclear, got %+v", c, summary.Results[c])
		}
	}
	if !summary.OverallPass {
		t.Fatalf("unclear criteria must not fail the assessment")
	}
}

func TestAssessCarbonLockinLevels(t *testing.T) {
	e := newTestEngine()

	high := e.AssessCarbonLockin(domain.ProjectFields{UseOfProceeds: "new gas pipeline for fossil fuel supply"}, "")
	if high.RiskLevel != domain.RiskHigh {
		t.Fatalf("expected high risk, got %s", high.RiskLevel)
	}
	if !strings.Contains(high.Assessment, "fossil fuel, gas pipeline") {
		t.Fatalf("expected indicators in assessment, got %q", high.Assessment)
	}

	sectorOnly := e.AssessCarbonLockin(domain.ProjectFields{UseOfProceeds: "fleet upgrade", Sector: "Aviation"}, "")
	if sectorOnly.RiskLevel != domain.RiskMedium || sectorOnly.HasTransitionPlan {
		t.Fatalf("expected medium without plan, got %+v", sectorOnly)
	}

	withPlan := e.AssessCarbonLockin(domain.ProjectFields{UseOfProceeds: "fleet electrification", Sector: "Aviation"}, "")
	if withPlan.RiskLevel != domain.RiskMedium || !withPlan.HasTransitionPlan {
		t.Fatalf("expected medium with plan, got %+v", withPlan)
	}
	if withPlan.Recommendation != "Require detailed transition timeline and interim targets." {
		t.Fatalf("unexpected recommendation %q", withPlan.Recommendation)
	}

	low := e.AssessCarbonLockin(domain.ProjectFields{UseOfProceeds: "rooftop solar", Sector: "Renewable energy"}, "")
	if low.RiskLevel != domain.RiskLow {
		t.Fatalf("expected low risk, got %s", low.RiskLevel)
	}
}

func TestCarbonLockinMonotonicInSectorRisk(t *testing.T) {
	e := newTestEngine()
	rank := map[domain.RiskLevel]int{domain.RiskLow: 0, domain.RiskMedium: 1, domain.RiskHigh: 2}
	for _, proceeds := range []string{"warehouse", "coal handling", "coal and gas pipeline"} {
		plain := e.AssessCarbonLockin(domain.ProjectFields{UseOfProceeds: proceeds, Sector: "Retail"}, "")
		risky := e.AssessCarbonLockin(domain.ProjectFields{UseOfProceeds: proceeds, Sector: "Oil & gas"}, "")
		if rank[risky.RiskLevel] < rank[plain.RiskLevel] {
			t.Fatalf("high-risk sector lowered risk for %q: %s < %s", proceeds, risky.RiskLevel, plain.RiskLevel)
		}
	}
}

func TestAssessEligibility(t *testing.T) {
	e := newTestEngine()

	ok := e.AssessEligibility(domain.ProjectFields{
		UseOfProceeds: "solar farm construction with emission reduction targets",
		Sector:        "Renewable energy",
	}, "")
	if !ok.IsEligible {
		t.Fatalf("expected eligible, got %+v", ok)
	}
	if len(ok.Issues) != 0 {
		t.Fatalf("expected no issues, got %v", ok.Issues)
	}
	last := ok.Recommendations[len(ok.Recommendations)-1]
	if last != "Ensure annual reporting on use of proceeds and environmental impact." {
		t.Fatalf("unexpected final recommendation %q", last)
	}

	bad := e.AssessEligibility(domain.ProjectFields{UseOfProceeds: "coal power plant", Sector: "Fossil fuel utilities"}, "")
	if bad.IsEligible {
		t.Fatalf("expected ineligible")
	}
	if bad.CarbonLockinRisk != domain.RiskHigh {
		t.Fatalf("expected high lock-in risk, got %s", bad.CarbonLockinRisk)
	}
	joined := strings.Join(bad.Issues, "|")
	for _, want := range []string{"Red flags: coal", "DNSH criteria failed: climate_mitigation", "High carbon lock-in risk"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected issue %q in %v", want, bad.Issues)
		}
	}
}

func TestSectorRisk(t *testing.T) {
	e := newTestEngine()
	cases := []struct {
		sector string
		want   domain.RiskLevel
		score  int
	}{
		{"Oil & gas", domain.RiskHigh, 85},
		{"food and beverage", domain.RiskMedium, 55},
		{"construction", domain.RiskHigh, 85},
		{"Renewable energy", domain.RiskLow, 20},
		{"Space tourism", domain.RiskMedium, 50},
		{"", domain.RiskMedium, 50},
	}
	for _, tc := range cases {
		got := e.SectorRisk(tc.sector)
		if got.Level != tc.want || got.Score != tc.score {
			t.Fatalf("SectorRisk(%q) = %+v, want %s/%d", tc.sector, got, tc.want, tc.score)
		}
	}
}

func TestLoadTablesOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	raw := "red_flags:\n  - tar sands\n"
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write rules: %v", err)
	}

	tables, err := LoadTables(path)
	if err != nil {
		t.Fatalf("LoadTables() error = %v", err)
	}
	if len(tables.RedFlags) != 1 || tables.RedFlags[0] != "tar sands" {
		t.Fatalf("expected overridden red flags, got %v", tables.RedFlags)
	}
	if len(tables.Categories) != 10 {
		t.Fatalf("expected default categories to survive, got %d", len(tables.Categories))
	}

	got := NewEngine(tables).ValidateUseOfProceeds("solar expansion funded by tar sands revenue", "")
	if got.IsValid {
		t.Fatalf("expected custom red flag to invalidate proceeds")
	}
}
