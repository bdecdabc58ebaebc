package compliance

import (
	"fmt"
	"strings"

	"github.com/kirillkom/green-loan-compliance/internal/core/domain"
)

const UnknownCategory = "Unknown"

func (e *Engine) ValidateUseOfProceeds(useOfProceeds, sector string) domain.UseOfProceedsResult {
	text := strings.ToLower(useOfProceeds)
	green := matches(text, e.tables.GreenKeywords)
	red := matches(text, e.tables.RedFlags)
	valid := len(green) > 0 && len(red) == 0

	category, confidence := e.MapCategory(useOfProceeds, sector)

	if green == nil {
		green = []string{}
	}
	if red == nil {
		red = []string{}
	}
	return domain.UseOfProceedsResult{
		IsValid:         valid,
		Category:        category,
		Confidence:      confidence,
		GreenIndicators: green,
		RedFlags:        red,
		Assessment:      proceedsAssessment(valid, category, green, red),
	}
}

// MapCategory picks the category with the most keyword hits in proceeds and
// sector text. Ties keep the earlier category.
func (e *Engine) MapCategory(useOfProceeds, sector string) (string, float64) {
	text := strings.ToLower(useOfProceeds + " " + sector)

	best, bestScore := UnknownCategory, 0.0
	for _, c := range e.tables.Categories {
		hits := len(matches(text, c.Keywords))
		if hits == 0 {
			continue
		}
		score := min(0.95, 0.5+0.15*float64(hits))
		if score > bestScore {
			best, bestScore = c.Name, score
		}
	}
	return best, bestScore
}

func proceedsAssessment(valid bool, category string, green, red []string) string {
	switch {
	case valid:
		shown := green
		if len(shown) > 5 {
			shown = shown[:5]
		}
		return fmt.Sprintf("Project qualifies under GLP category: %s. Green indicators identified: %s.",
			category, strings.Join(shown, ", "))
	case len(red) > 0:
		return fmt.Sprintf("Project does NOT qualify due to red flags: %s.", strings.Join(red, ", "))
	default:
		return "Insufficient evidence of environmental benefit. Please provide more details."
	}
}
