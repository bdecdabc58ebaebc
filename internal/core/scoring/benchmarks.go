package scoring

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/green-loan-compliance/internal/core/domain"
)

type namedBenchmark struct {
	Sector                 string `yaml:"sector"`
	domain.SectorBenchmark `yaml:",inline"`
}

// Benchmarks is the ordered sector carbon-intensity table. Partial matches
// resolve to the first entry in table order.
type Benchmarks struct {
	entries  []namedBenchmark
	fallback domain.SectorBenchmark
}

var defaultBenchmarks = []namedBenchmark{
	{"Fossil fuel utilities", domain.SectorBenchmark{Intensity: 2500, Risk: domain.RiskHigh, Pathway2030: 1500}},
	{"Oil & gas", domain.SectorBenchmark{Intensity: 2200, Risk: domain.RiskHigh, Pathway2030: 1200}},
	{"Mining and quarrying", domain.SectorBenchmark{Intensity: 1800, Risk: domain.RiskHigh, Pathway2030: 1000}},
	{"Chemicals", domain.SectorBenchmark{Intensity: 1200, Risk: domain.RiskHigh, Pathway2030: 700}},
	{"Heavy Industry", domain.SectorBenchmark{Intensity: 1500, Risk: domain.RiskHigh, Pathway2030: 900}},
	{"Aviation", domain.SectorBenchmark{Intensity: 1100, Risk: domain.RiskHigh, Pathway2030: 650}},
	{"Transportation and storage", domain.SectorBenchmark{Intensity: 800, Risk: domain.RiskMedium, Pathway2030: 450}},
	{"Construction materials", domain.SectorBenchmark{Intensity: 900, Risk: domain.RiskMedium, Pathway2030: 500}},
	{"Agriculture, forestry, and fishing", domain.SectorBenchmark{Intensity: 600, Risk: domain.RiskMedium, Pathway2030: 350}},
	{"Construction", domain.SectorBenchmark{Intensity: 400, Risk: domain.RiskMedium, Pathway2030: 250}},
	{"Manufacturing of machinery and equipment", domain.SectorBenchmark{Intensity: 350, Risk: domain.RiskMedium, Pathway2030: 200}},
	{"Food and beverage", domain.SectorBenchmark{Intensity: 300, Risk: domain.RiskMedium, Pathway2030: 180}},
	{"Water supply, sewerage and waste management", domain.SectorBenchmark{Intensity: 250, Risk: domain.RiskMedium, Pathway2030: 150}},
	{"Wholesale and retail trade", domain.SectorBenchmark{Intensity: 150, Risk: domain.RiskLow, Pathway2030: 90}},
	{"Real estate activities", domain.SectorBenchmark{Intensity: 120, Risk: domain.RiskLow, Pathway2030: 70}},
	{"Healthcare services", domain.SectorBenchmark{Intensity: 100, Risk: domain.RiskLow, Pathway2030: 60}},
	{"Information technology services", domain.SectorBenchmark{Intensity: 80, Risk: domain.RiskLow, Pathway2030: 50}},
	{"Financial and insurance activities", domain.SectorBenchmark{Intensity: 50, Risk: domain.RiskLow, Pathway2030: 30}},
	{"Education services", domain.SectorBenchmark{Intensity: 40, Risk: domain.RiskLow, Pathway2030: 25}},
	{"Renewable energy", domain.SectorBenchmark{Intensity: 20, Risk: domain.RiskLow, Pathway2030: 10}},
	{"Professional, scientific and technical services", domain.SectorBenchmark{Intensity: 60, Risk: domain.RiskLow, Pathway2030: 35}},
}

var defaultFallback = domain.SectorBenchmark{Intensity: 200, Risk: domain.RiskMedium, Pathway2030: 120}

func DefaultBenchmarks() Benchmarks {
	entries := make([]namedBenchmark, len(defaultBenchmarks))
	copy(entries, defaultBenchmarks)
	return Benchmarks{entries: entries, fallback: defaultFallback}
}

// LoadBenchmarks reads a YAML list of {sector, intensity, risk,
// pathway_2030} entries that replaces the default table.
func LoadBenchmarks(path string) (Benchmarks, error) {
	if path == "" {
		return DefaultBenchmarks(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Benchmarks{}, fmt.Errorf("read benchmarks file: %w", err)
	}
	var entries []namedBenchmark
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return Benchmarks{}, fmt.Errorf("parse benchmarks file: %w", err)
	}
	if len(entries) == 0 {
		return Benchmarks{}, fmt.Errorf("benchmarks file %s has no entries", path)
	}
	return Benchmarks{entries: entries, fallback: defaultFallback}, nil
}

// Lookup tries an exact sector match, then a case-insensitive partial match
// in either direction, then the fallback benchmark.
func (b Benchmarks) Lookup(sector string) domain.SectorBenchmark {
	for _, e := range b.entries {
		if e.Sector == sector {
			return e.SectorBenchmark
		}
	}
	s := strings.ToLower(strings.TrimSpace(sector))
	if s != "" {
		for _, e := range b.entries {
			key := strings.ToLower(e.Sector)
			if strings.Contains(s, key) || strings.Contains(key, s) {
				return e.SectorBenchmark
			}
		}
	}
	return b.fallback
}
