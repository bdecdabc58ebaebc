package extraction

import (
	"strings"
	"testing"

	"github.com/kirillkom/green-loan-compliance/internal/core/domain"
)

func TestIsValidAnswer(t *testing.T) {
	cases := []struct {
		answer string
		want   bool
	}{
		{"(iv)", false},
		{"a)", false},
		{"•", false},
		{"12.", false},
		{"[ii].", false},
		{"3.5, 7", false},
		{"--- ??", false},
		{"ok", false},
		{"Solar farm construction", true},
		{"Scope 1: 1,500 tCO2", true},
		{"(i) proceeds fund wind turbines", true},
	}
	for _, tc := range cases {
		if got := IsValidAnswer(tc.answer); got != tc.want {
			t.Fatalf("IsValidAnswer(%q) = %v, want %v", tc.answer, got, tc.want)
		}
	}
}

func TestIsNotFound(t *testing.T) {
	for _, s := range []string{"Not found", " not found. ", "Unknown", "just not found"} {
		if !IsNotFound(s) {
			t.Fatalf("expected %q to be a not-found synonym", s)
		}
	}
	if IsNotFound("Not found in section 3, see annex") {
		t.Fatalf("longer answers are not synonyms")
	}
}

func TestIsFound(t *testing.T) {
	if !IsFound("Solar panels", 0.31, 0.3) {
		t.Fatalf("expected found above threshold")
	}
	if IsFound("Solar panels", 0.3, 0.3) {
		t.Fatalf("threshold is exclusive")
	}
	if IsFound("No relevant documents", 0.9, 0.3) {
		t.Fatalf("boilerplate phrasing must not count as found")
	}
}

func TestBuildContextBudget(t *testing.T) {
	hits := []domain.SearchHit{
		{Text: strings.Repeat("a", 2500)},
		{Text: "   "},
		{Text: strings.Repeat("b", 1000)},
		{Text: "never reached"},
	}
	got := BuildContext(hits, ContextBudget)
	want := strings.Repeat("a", 2500) + "\n\n" + strings.Repeat("b", 500)
	if got != want {
		t.Fatalf("unexpected context length %d", len(got))
	}
}

func TestBuildContextDropsShortRemainder(t *testing.T) {
	hits := []domain.SearchHit{
		{Text: strings.Repeat("a", 2850)},
		{Text: strings.Repeat("b", 400)},
	}
	got := BuildContext(hits, ContextBudget)
	if got != strings.Repeat("a", 2850) {
		t.Fatalf("expected remainder of 150 chars to be dropped, got len %d", len(got))
	}
}

func TestSourcesLimitAndRounding(t *testing.T) {
	hits := []domain.SearchHit{
		{Text: strings.Repeat("x", 300), Source: "a.pdf", Score: 0.87654},
		{Text: "short", Source: "b.pdf", Score: 0.5},
		{Text: "c", Source: "c.pdf", Score: 0.4},
		{Text: "d", Source: "d.pdf", Score: 0.3},
	}
	got := Sources(hits)
	if len(got) != 3 {
		t.Fatalf("expected 3 sources, got %d", len(got))
	}
	if len(got[0].TextSnippet) != SnippetChars {
		t.Fatalf("expected snippet truncated to %d, got %d", SnippetChars, len(got[0].TextSnippet))
	}
	if got[0].Score != 0.877 {
		t.Fatalf("expected score rounded to 0.877, got %v", got[0].Score)
	}
	if len(Evidence(hits[:1], 2)) != 1 {
		t.Fatalf("expected evidence bounded by hits")
	}
}

func TestTruncateKeepsRunes(t *testing.T) {
	s := "ab€"
	if got := truncate(s, 3); got != "ab" {
		t.Fatalf("truncate() = %q", got)
	}
}

func TestPromptAndCleanGenerated(t *testing.T) {
	prompt := GenerativePrompt("What is the SPT?", strings.Repeat("z", 2500))
	if !strings.Contains(prompt, `say just "Not found"`) {
		t.Fatalf("prompt missing not-found instruction")
	}
	if strings.Count(prompt, "z") != GenerativeContext {
		t.Fatalf("expected context cut to %d chars", GenerativeContext)
	}
	if got := CleanGenerated("Answer:  42% by 2030"); got != "42% by 2030" {
		t.Fatalf("CleanGenerated() = %q", got)
	}
	if got := ClaimQuestion("uses solar"); got != "Does the document support: uses solar?" {
		t.Fatalf("ClaimQuestion() = %q", got)
	}
}

func TestQuestionsHaveClaimTypes(t *testing.T) {
	for _, q := range Questions {
		if ClaimTypes[q] == "" {
			t.Fatalf("question %q has no claim type", q)
		}
	}
}
