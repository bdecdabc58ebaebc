package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kirillkom/green-loan-compliance/internal/core/domain"
)

type assessReport struct {
	Eligibility        domain.GLPEligibilityResult `json:"eligibility"`
	DNSH               domain.DNSHSummary          `json:"dnsh"`
	CarbonLockin       domain.CarbonLockinResult   `json:"carbon_lockin"`
	SectorRisk         domain.SectorRisk           `json:"sector_risk"`
	ESG                domain.ESGScore             `json:"esg"`
	Transition         domain.TransitionScore      `json:"transition"`
	CarbonMetrics      domain.CarbonMetrics        `json:"carbon_metrics"`
	QuestionnaireScore float64                     `json:"questionnaire_score"`
	SPT                *domain.SPTCalibration      `json:"spt,omitempty"`
}

func (rt *runtime) assessCmd() *cobra.Command {
	var textFile string
	cmd := &cobra.Command{
		Use:   "assess FIELDS_FILE",
		Short: "Run the compliance rules and ESG scoring over application fields",
		Long: `Reads loan application fields from a YAML or JSON file and prints GLP
eligibility, the DNSH criteria, carbon lock-in risk, the ESG score, the
transition score and carbon metrics. --text adds extracted document text to
the keyword rules.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := loadFields(args[0])
			if err != nil {
				return err
			}
			var text string
			if textFile != "" {
				raw, err := os.ReadFile(textFile)
				if err != nil {
					return err
				}
				text = string(raw)
			}
			engine, err := rt.assessment()
			if err != nil {
				return err
			}

			report := assessReport{
				Eligibility:        engine.AssessGLPEligibility(fields, text),
				DNSH:               engine.AssessDNSH(fields, text),
				CarbonLockin:       engine.AssessCarbonLockin(fields, text),
				SectorRisk:         engine.SectorRisk(fields.Sector),
				ESG:                engine.Score(fields, nil, nil, text),
				Transition:         engine.TransitionScore(fields, text),
				CarbonMetrics:      engine.CarbonMetrics(fields),
				QuestionnaireScore: engine.QuestionnaireScore(fields.Questionnaire),
			}
			if fields.TargetReduction != "" {
				report.SPT = engine.CalibrateSPT(fields.TotalEmissions(), fields.TargetReduction.String(), fields.BaselineYear, fields.TargetYear, fields.Sector)
			}
			return rt.print(cmd, report, func(w io.Writer) { writeReport(w, report) })
		},
	}
	cmd.Flags().StringVar(&textFile, "text", "", "file with extracted document text")
	return cmd
}

func (rt *runtime) sptCmd() *cobra.Command {
	var (
		baseline     float64
		reduction    string
		baselineYear int
		targetYear   int
		sector       string
	)
	cmd := &cobra.Command{
		Use:   "spt",
		Short: "Calibrate a sustainability performance target against the 1.5C pathway",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := rt.assessment()
			if err != nil {
				return err
			}
			cal := engine.CalibrateSPT(baseline, reduction, baselineYear, targetYear, sector)
			if cal == nil {
				return fmt.Errorf("cannot calibrate: baseline must be positive and target a percentage")
			}
			return rt.print(cmd, cal, func(w io.Writer) { writeSPT(w, cal) })
		},
	}
	cmd.Flags().Float64Var(&baseline, "baseline", 0, "baseline emissions in tCO2e")
	cmd.Flags().StringVar(&reduction, "reduction", "", "reduction target, e.g. 42%")
	cmd.Flags().IntVar(&baselineYear, "baseline-year", 0, "baseline year (default 2025)")
	cmd.Flags().IntVar(&targetYear, "target-year", 0, "target year (default baseline year + 5)")
	cmd.Flags().StringVar(&sector, "sector", "", "borrower sector")
	_ = cmd.MarkFlagRequired("baseline")
	_ = cmd.MarkFlagRequired("reduction")
	return cmd
}

func writeReport(w io.Writer, r assessReport) {
	tw := newTable(w)
	fmt.Fprintf(tw, "GLP eligible\t%s\t%s\n", yesNo(r.Eligibility.IsEligible), r.Eligibility.Category)
	fmt.Fprintf(tw, "ESG score\t%.1f\t%s\n", r.ESG.TotalScore, r.ESG.Grade)
	fmt.Fprintf(tw, "transition score\t%.1f\t%s\n", r.Transition.Total, r.Transition.Grade)
	fmt.Fprintf(tw, "carbon lock-in\t%s\t\n", r.CarbonLockin.RiskLevel)
	fmt.Fprintf(tw, "sector risk\t%s\t%d\n", r.SectorRisk.Level, r.SectorRisk.Score)
	fmt.Fprintf(tw, "questionnaire\t%.0f\t\n", r.QuestionnaireScore)
	fmt.Fprintf(tw, "DNSH\t%s\t%d pass, %d fail, %d unclear\n", yesNo(r.DNSH.OverallPass), r.DNSH.PassedCount, r.DNSH.FailedCount, r.DNSH.UnclearCount)
	for _, c := range domain.DNSHCriteria {
		if res, ok := r.DNSH.Results[c]; ok {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", c, res.Status, res.Evidence)
		}
	}
	if r.CarbonMetrics.BenchmarkPerformance != domain.PerformanceUnknown {
		fmt.Fprintf(tw, "carbon intensity\t%.1f\t%s benchmark %.1f\n", r.CarbonMetrics.CarbonIntensity, r.CarbonMetrics.BenchmarkPerformance, r.CarbonMetrics.SectorBenchmark)
	}
	_ = tw.Flush()

	if len(r.Eligibility.Issues) > 0 {
		fmt.Fprintln(w, "\nissues:")
		for _, s := range r.Eligibility.Issues {
			fmt.Fprintf(w, "  - %s\n", s)
		}
	}
	if len(r.ESG.Recommendations) > 0 {
		fmt.Fprintln(w, "\nrecommendations:")
		for _, s := range r.ESG.Recommendations {
			fmt.Fprintf(w, "  - %s\n", s)
		}
	}
	if r.SPT != nil {
		fmt.Fprintln(w)
		writeSPT(w, r.SPT)
	}
}

func writeSPT(w io.Writer, c *domain.SPTCalibration) {
	tw := newTable(w)
	fmt.Fprintf(tw, "baseline\t%.0f tCO2e (%d)\n", c.BaselineEmissions, c.BaselineYear)
	fmt.Fprintf(tw, "target\t%.0f tCO2e (%d)\n", c.TargetEmissions, c.TargetYear)
	fmt.Fprintf(tw, "reduction\t%.1f%%, %.2f%% per year\n", c.ReductionPercentage, c.AnnualReductionRate)
	fmt.Fprintf(tw, "ambition\t%s\n", c.AmbitionLevel)
	fmt.Fprintf(tw, "science based\t%s\n", yesNo(c.IsScienceBased))
	fmt.Fprintf(tw, "pathway alignment\t%.0f%%\n", c.PathwayAlignment)
	_ = tw.Flush()
}
