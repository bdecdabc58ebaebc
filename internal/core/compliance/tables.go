package compliance

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Category is one GLP eligible project category and the phrases that map
// proceeds text onto it.
type Category struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

type DNSHTables struct {
	MitigationNegative []string `yaml:"mitigation_negative"`
	MitigationPositive []string `yaml:"mitigation_positive"`
	Resilience         []string `yaml:"resilience"`
	Vulnerability      []string `yaml:"vulnerability"`
	WaterIntensive     []string `yaml:"water_intensive"`
	WaterMitigation    []string `yaml:"water_mitigation"`
	WaterStressed      []string `yaml:"water_stressed"`
	Linear             []string `yaml:"linear"`
	Circular           []string `yaml:"circular"`
	PollutingSectors   []string `yaml:"polluting_sectors"`
	PollutionControls  []string `yaml:"pollution_controls"`
	Sensitive          []string `yaml:"sensitive"`
	Protection         []string `yaml:"protection"`
}

// Tables holds every keyword list the rules engine matches against. All
// entries are matched case-insensitively as substrings.
type Tables struct {
	GreenKeywords     []string   `yaml:"green_keywords"`
	RedFlags          []string   `yaml:"red_flags"`
	Categories        []Category `yaml:"categories"`
	DNSH              DNSHTables `yaml:"dnsh"`
	LockinIndicators  []string   `yaml:"lockin_indicators"`
	TransitionPhrases []string   `yaml:"transition_phrases"`
	HighRiskSectors   []string   `yaml:"high_risk_sectors"`
	MediumRiskSectors []string   `yaml:"medium_risk_sectors"`
	LowRiskSectors    []string   `yaml:"low_risk_sectors"`
}

func DefaultTables() Tables {
	return Tables{
		GreenKeywords: []string{
			"renewable", "solar", "wind", "hydro", "efficiency",
			"emission reduction", "clean", "sustainable", "recycling",
			"biodiversity", "conservation", "green", "low carbon",
			"electric vehicle", "public transport", "water treatment",
		},
		RedFlags: []string{
			"fossil fuel expansion", "coal", "oil exploration",
			"mining without remediation", "deforestation",
		},
		Categories: []Category{
			{Name: "Renewable Energy", Keywords: []string{
				"wind turbine", "solar panel", "solar farm", "hydropower",
				"geothermal", "biomass", "renewable energy", "wind farm",
			}},
			{Name: "Energy Efficiency", Keywords: []string{
				"energy efficiency", "retrofit", "led lighting", "hvac upgrade",
				"smart meter", "building management", "insulation",
			}},
			{Name: "Clean Transportation", Keywords: []string{
				"electric vehicle", "ev charging", "public transit", "rail",
				"bicycle infrastructure", "hydrogen fuel", "fleet electrification",
			}},
			{Name: "Green Buildings", Keywords: []string{
				"green building", "leed certified", "breeam", "net zero",
				"sustainable construction", "eco-friendly building",
			}},
			{Name: "Sustainable Water and Wastewater Management", Keywords: []string{
				"water treatment", "desalination", "wastewater", "water recycling",
				"stormwater management", "water efficiency",
			}},
			{Name: "Pollution Prevention and Control", Keywords: []string{
				"emission control", "air quality", "pollution reduction",
				"waste management", "hazardous waste", "soil remediation",
			}},
			{Name: "Climate Change Adaptation", Keywords: []string{
				"flood defense", "climate resilience", "drought management",
				"coastal protection", "climate adaptation",
			}},
			{Name: "Terrestrial and Aquatic Biodiversity Conservation", Keywords: []string{
				"biodiversity", "conservation", "habitat", "ecosystem",
			}},
			{Name: "Eco-efficient and/or Circular Economy Adapted Products", Keywords: []string{
				"circular", "recycling", "sustainable product",
			}},
			{Name: "Environmentally Sustainable Management of Living Natural Resources and Land Use", Keywords: []string{
				"sustainable forest", "agriculture", "land use",
			}},
		},
		DNSH: DNSHTables{
			MitigationNegative: []string{"increased emissions", "coal", "fossil fuel expansion"},
			MitigationPositive: []string{"emission reduction", "carbon neutral", "net zero", "renewable"},
			Resilience: []string{
				"climate resilient", "flood protection", "drought resistant",
				"weather resilient", "climate risk assessment",
			},
			Vulnerability:     []string{"flood zone", "coastal area", "hurricane", "wildfire"},
			WaterIntensive:    []string{"mining", "textile", "agriculture", "data center", "cooling"},
			WaterMitigation:   []string{"water recycling", "rainwater", "water efficiency", "water conservation"},
			WaterStressed:     []string{"desert", "arid", "drought", "water scarcity"},
			Linear:            []string{"single use", "disposable", "landfill"},
			Circular:          []string{"recycling", "reuse", "circular", "waste reduction", "recyclable"},
			PollutingSectors:  []string{"chemical", "manufacturing", "mining", "oil", "refinery"},
			PollutionControls: []string{"emission control", "pollution prevention", "air quality", "filter"},
			Sensitive: []string{
				"protected area", "nature reserve", "national park", "wetland",
				"endangered species", "primary forest", "unesco",
			},
			Protection: []string{
				"biodiversity", "habitat restoration", "conservation",
				"environmental impact assessment", "eia approved",
			},
		},
		LockinIndicators: []string{
			"fossil fuel", "coal", "oil drilling", "natural gas infrastructure",
			"carbon capture retrofit for fossil", "gas pipeline", "LNG terminal",
		},
		TransitionPhrases: []string{
			"transition", "phase out", "decommission", "renewable replacement",
			"electrification", "hydrogen transition",
		},
		HighRiskSectors: []string{
			"Fossil fuel utilities", "Oil & gas", "Mining and quarrying", "Chemicals",
			"Agriculture, forestry, and fishing", "Transportation and storage",
			"Construction materials", "Heavy Industry", "Aviation",
		},
		MediumRiskSectors: []string{
			"Construction", "Wholesale and retail trade", "Real estate activities",
			"Manufacturing of machinery and equipment",
			"Water supply, sewerage and waste management", "Food and beverage",
			"Healthcare services",
		},
		LowRiskSectors: []string{
			"Renewable energy", "Financial and insurance activities",
			"Healthcare and social assistance", "Education services",
			"Professional, scientific and technical services",
			"Information technology services",
		},
	}
}

// LoadTables reads a YAML overlay on top of the default tables. Lists
// present in the file replace the defaults; absent lists are kept.
func LoadTables(path string) (Tables, error) {
	tables := DefaultTables()
	if path == "" {
		return tables, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Tables{}, fmt.Errorf("read rules file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &tables); err != nil {
		return Tables{}, fmt.Errorf("parse rules file: %w", err)
	}
	if len(tables.Categories) == 0 {
		return Tables{}, fmt.Errorf("rules file %s: categories must not be empty", path)
	}
	return tables, nil
}

// CategoryNames returns the configured GLP category names in order.
func (t Tables) CategoryNames() []string {
	out := make([]string, 0, len(t.Categories))
	for _, c := range t.Categories {
		out = append(out, c.Name)
	}
	return out
}
