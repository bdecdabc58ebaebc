package compliance

import "strings"

// matches returns the keywords contained in text, in table order. text must
// already be lower-cased.
func matches(text string, keywords []string) []string {
	var out []string
	for _, kw := range keywords {
		if strings.Contains(text, strings.ToLower(kw)) {
			out = append(out, kw)
		}
	}
	return out
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

func containsAnyOf(keywords []string, texts ...string) bool {
	for _, text := range texts {
		if containsAny(text, keywords) {
			return true
		}
	}
	return false
}
