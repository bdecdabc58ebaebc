package extraction

import (
	"math"
	"strings"

	"github.com/kirillkom/green-loan-compliance/internal/core/domain"
)

// BuildContext joins hit texts until budget characters are used. A hit that
// would overflow is cut to the remaining budget only when more than 200
// characters remain.
func BuildContext(hits []domain.SearchHit, budget int) string {
	parts := make([]string, 0, len(hits))
	used := 0
	for _, hit := range hits {
		text := strings.TrimSpace(hit.Text)
		if text == "" {
			continue
		}
		if used+len(text) > budget {
			if remaining := budget - used; remaining > minTruncatedContext {
				parts = append(parts, truncate(text, remaining))
			}
			break
		}
		parts = append(parts, text)
		used += len(text)
	}
	return strings.Join(parts, "\n\n")
}

// Sources returns snippets for the first three hits.
func Sources(hits []domain.SearchHit) []domain.SourceSnippet {
	return snippets(hits, maxSources)
}

func snippets(hits []domain.SearchHit, n int) []domain.SourceSnippet {
	out := make([]domain.SourceSnippet, 0, min(n, len(hits)))
	for _, hit := range hits[:min(n, len(hits))] {
		out = append(out, domain.SourceSnippet{
			TextSnippet: truncate(hit.Text, SnippetChars),
			Source:      hit.Source,
			Score:       math.Round(hit.Score*1000) / 1000,
		})
	}
	return out
}

// Evidence returns snippets for the first n hits.
func Evidence(hits []domain.SearchHit, n int) []domain.SourceSnippet {
	return snippets(hits, n)
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func utf8RuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
