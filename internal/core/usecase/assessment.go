package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/green-loan-compliance/internal/core/compliance"
	"github.com/kirillkom/green-loan-compliance/internal/core/domain"
	"github.com/kirillkom/green-loan-compliance/internal/core/extraction"
	"github.com/kirillkom/green-loan-compliance/internal/core/ports"
	"github.com/kirillkom/green-loan-compliance/internal/core/scoring"
)

type AssessmentUseCase struct {
	rules   *compliance.Engine
	scorer  *scoring.Engine
	results ports.AssessmentRepository
}

// NewAssessmentUseCase builds the assessment service. results may be nil
// when snapshots are not persisted.
func NewAssessmentUseCase(rules *compliance.Engine, scorer *scoring.Engine, results ports.AssessmentRepository) *AssessmentUseCase {
	return &AssessmentUseCase{
		rules:   rules,
		scorer:  scorer,
		results: results,
	}
}

func (uc *AssessmentUseCase) AssessGLPEligibility(fields domain.ProjectFields, text string) domain.GLPEligibilityResult {
	return uc.rules.AssessEligibility(fields, text)
}

func (uc *AssessmentUseCase) AssessDNSH(fields domain.ProjectFields, text string) domain.DNSHSummary {
	return uc.rules.AssessDNSH(fields, text)
}

func (uc *AssessmentUseCase) AssessCarbonLockin(fields domain.ProjectFields, text string) domain.CarbonLockinResult {
	return uc.rules.AssessCarbonLockin(fields, text)
}

func (uc *AssessmentUseCase) ValidateUseOfProceeds(useOfProceeds, sector string) domain.UseOfProceedsResult {
	return uc.rules.ValidateUseOfProceeds(useOfProceeds, sector)
}

func (uc *AssessmentUseCase) SectorRisk(sector string) domain.SectorRisk {
	return uc.rules.SectorRisk(sector)
}

func (uc *AssessmentUseCase) QuestionnaireScore(answers domain.Answers) float64 {
	return scoring.QuestionnaireScore(answers)
}

func (uc *AssessmentUseCase) Score(fields domain.ProjectFields, claims []domain.Claim, evidence []domain.Evidence, text string) domain.ESGScore {
	return uc.scorer.Score(fields, claims, evidence, text)
}

func (uc *AssessmentUseCase) CalibrateSPT(baseline float64, reduction string, baselineYear, targetYear int, sector string) *domain.SPTCalibration {
	return uc.scorer.CalibrateSPT(baseline, reduction, baselineYear, targetYear, sector)
}

func (uc *AssessmentUseCase) TransitionScore(fields domain.ProjectFields, text string) domain.TransitionScore {
	return uc.scorer.TransitionScore(fields, text)
}

func (uc *AssessmentUseCase) CarbonMetrics(fields domain.ProjectFields) domain.CarbonMetrics {
	return uc.scorer.CarbonMetrics(fields)
}

// Evaluate runs every rule and the ESG score over one loan's fields and
// bulk extractions.
func (uc *AssessmentUseCase) Evaluate(fields domain.ProjectFields, extractions []domain.FieldExtraction) domain.LoanAssessment {
	claims, evidence := ClaimsFromExtractions(extractions)
	text := ExtractedText(extractions)
	return domain.LoanAssessment{
		ESG:         uc.scorer.Score(fields, claims, evidence, text),
		Eligibility: uc.rules.AssessEligibility(fields, text),
		Carbon:      uc.rules.AssessCarbonLockin(fields, text),
		DNSH:        uc.rules.AssessDNSH(fields, text),
		Extractions: extractions,
	}
}

// Record evaluates and, when a repository is configured, stores the snapshot.
func (uc *AssessmentUseCase) Record(
	ctx context.Context,
	loanID, jobID string,
	fields domain.ProjectFields,
	extractions []domain.FieldExtraction,
) (*domain.LoanAssessment, error) {
	assessment := uc.Evaluate(fields, extractions)
	assessment.ID = uuid.NewString()
	assessment.LoanID = loanID
	assessment.JobID = jobID
	assessment.CreatedAt = time.Now().UTC()

	if uc.results == nil {
		return &assessment, nil
	}
	if err := uc.results.Save(ctx, &assessment); err != nil {
		return nil, fmt.Errorf("save assessment: %w", err)
	}
	return &assessment, nil
}

func (uc *AssessmentUseCase) Latest(ctx context.Context, loanID string) (*domain.LoanAssessment, error) {
	if uc.results == nil {
		return nil, domain.WrapError(domain.ErrNotFound, "latest assessment", fmt.Errorf("assessments are not persisted"))
	}
	return uc.results.Latest(ctx, loanID)
}

// ClaimsFromExtractions turns found bulk answers into claims and evidence.
func ClaimsFromExtractions(extractions []domain.FieldExtraction) ([]domain.Claim, []domain.Evidence) {
	claims := make([]domain.Claim, 0, len(extractions))
	evidence := make([]domain.Evidence, 0, len(extractions))
	for _, ex := range extractions {
		if !ex.Found {
			continue
		}
		claimType := extraction.ClaimTypes[ex.Question]
		if claimType == "" {
			claimType = "other"
		}
		claims = append(claims, domain.Claim{Type: claimType, Text: ex.Answer, Confidence: ex.Confidence})
		evidence = append(evidence, domain.Evidence{Source: claimType, Text: ex.Answer, Score: ex.Confidence})
	}
	return claims, evidence
}

// ExtractedText joins found answers into the free text the rules scan.
func ExtractedText(extractions []domain.FieldExtraction) string {
	parts := make([]string, 0, len(extractions))
	for _, ex := range extractions {
		if ex.Found {
			parts = append(parts, ex.Answer)
		}
	}
	return strings.Join(parts, " ")
}
