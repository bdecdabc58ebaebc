package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// ProjectFields are the structured loan application fields the rules and
// scoring engines read. Zero values mean "not provided".
type ProjectFields struct {
	OrgName             string    `json:"org_name" yaml:"org_name"`
	ProjectName         string    `json:"project_name" yaml:"project_name"`
	AmountRequested     float64   `json:"amount_requested" yaml:"amount_requested"`
	Currency            string    `json:"currency" yaml:"currency"`
	PlannedStartDate    string    `json:"planned_start_date" yaml:"planned_start_date"`
	ShareholderEntities int       `json:"shareholder_entities" yaml:"shareholder_entities"`
	Sector              string    `json:"sector" yaml:"sector"`
	Location            string    `json:"location" yaml:"location"`
	ProjectType         string    `json:"project_type" yaml:"project_type"`
	UseOfProceeds       string    `json:"use_of_proceeds" yaml:"use_of_proceeds"`
	Scope1Tco2          float64   `json:"scope1_tco2" yaml:"scope1_tco2"`
	Scope2Tco2          float64   `json:"scope2_tco2" yaml:"scope2_tco2"`
	Scope3Tco2          float64   `json:"scope3_tco2" yaml:"scope3_tco2"`
	AnnualRevenue       float64   `json:"annual_revenue" yaml:"annual_revenue"`
	BaselineYear        int       `json:"baseline_year" yaml:"baseline_year"`
	TargetReduction     Reduction `json:"target_reduction" yaml:"target_reduction"`
	TargetYear          int       `json:"target_year" yaml:"target_year"`
	DocumentCount       int       `json:"document_count" yaml:"document_count"`
	Questionnaire       Answers   `json:"questionnaire" yaml:"questionnaire"`
}

// TotalEmissions sums scope 1, 2 and 3.
func (p ProjectFields) TotalEmissions() float64 {
	return p.Scope1Tco2 + p.Scope2Tco2 + p.Scope3Tco2
}

// Reduction is a committed emission reduction percentage as submitted, for
// example "30" or "30%". Applications send it as a JSON string or number; any
// other JSON value decodes as not set.
type Reduction string

func (r *Reduction) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*r = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = Reduction(s)
	default:
		v, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			*r = ""
			return nil
		}
		*r = Reduction(strconv.FormatFloat(v, 'f', -1, 64))
	}
	return nil
}

func (r Reduction) String() string {
	return string(r)
}

// Answers holds questionnaire answers keyed by question id.
type Answers map[string]string

func (a Answers) Is(key, value string) bool {
	if a == nil {
		return false
	}
	return a[key] == value
}

type LoanDocument struct {
	LoanID     string    `json:"loan_id"`
	Filename   string    `json:"filename"`
	DocType    string    `json:"doc_type"`
	StorageKey string    `json:"storage_key"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// LoanAssessment is the verdict snapshot of one completed ingestion run.
type LoanAssessment struct {
	ID          string               `json:"id"`
	LoanID      string               `json:"loan_id"`
	JobID       string               `json:"job_id"`
	ESG         ESGScore             `json:"esg"`
	Eligibility GLPEligibilityResult `json:"eligibility"`
	Carbon      CarbonLockinResult   `json:"carbon_lockin"`
	DNSH        DNSHSummary          `json:"dnsh"`
	Extractions []FieldExtraction    `json:"extractions"`
	CreatedAt   time.Time            `json:"created_at"`
}
