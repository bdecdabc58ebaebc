package extraction

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	numeralsOnly = regexp.MustCompile(`^[\d.,()\[\]ivxlcdm\s]+$`)
	symbolsOnly  = regexp.MustCompile(`^[\W\d]+$`)

	boilerplate = []*regexp.Regexp{
		regexp.MustCompile(`^\([ivx]+\)\.?$`),
		regexp.MustCompile(`^\[[ivx]+\]\.?$`),
		regexp.MustCompile(`^\(\d+\)\.?$`),
		regexp.MustCompile(`^[a-z]\)\.?$`),
		regexp.MustCompile(`^•\s*$`),
		regexp.MustCompile(`^\d+\.\s*$`),
	}
)

// IsValidAnswer rejects fragments a reader model tends to return from
// enumerated documents: numbering, roman numerals, bullets and punctuation.
func IsValidAnswer(answer string) bool {
	cleaned := strings.ToLower(strings.TrimSpace(answer))
	if len([]rune(cleaned)) < 3 {
		return false
	}
	if numeralsOnly.MatchString(cleaned) {
		return false
	}
	if len([]rune(cleaned)) < 10 && strings.IndexFunc(cleaned, unicode.IsLetter) < 0 {
		return false
	}
	if symbolsOnly.MatchString(cleaned) {
		return false
	}
	for _, re := range boilerplate {
		if re.MatchString(cleaned) {
			return false
		}
	}
	return true
}

var notFoundAnswers = map[string]bool{
	"not found":      true,
	"not found.":     true,
	"unknown":        true,
	"just not found": true,
}

// IsNotFound reports whether a generated answer only says the context had
// no answer.
func IsNotFound(answer string) bool {
	return notFoundAnswers[strings.ToLower(strings.TrimSpace(answer))]
}

var notFoundPhrases = []string{
	"no documents", "not found", "could not extract",
	"no relevant", "unknown", "not available",
}

// IsFound classifies a bulk extraction answer.
func IsFound(answer string, confidence, threshold float64) bool {
	if confidence <= threshold {
		return false
	}
	lower := strings.ToLower(answer)
	for _, p := range notFoundPhrases {
		if strings.Contains(lower, p) {
			return false
		}
	}
	return true
}
