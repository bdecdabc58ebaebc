// Package llm holds pieces shared by the model backends: the span prompt
// used to get extractive answers out of a generative model, and a lazily
// probed embedder handle.
package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kirillkom/green-loan-compliance/internal/core/domain"
)

// SpanPrompt asks a generative model to behave like an extractive reader.
func SpanPrompt(question, contextText string) string {
	return `You are an extractive question answering model for loan documents.
Copy the shortest exact span of the context that answers the question.
Return strict JSON object with keys:
answer (string, copied verbatim from the context, empty if absent), score (number from 0 to 1).
No markdown, no extra keys.

Question:
` + question + `

Context:
` + contextText
}

// ParseSpan decodes the model's JSON reply, tolerating text around the
// object.
func ParseSpan(raw, contextText string) (domain.Span, error) {
	var parsed struct {
		Answer string  `json:"answer"`
		Score  float64 `json:"score"`
	}
	if err := json.Unmarshal([]byte(ExtractJSONObject(raw)), &parsed); err != nil {
		return domain.Span{}, fmt.Errorf("parse span json: %w", err)
	}
	return ScoreSpan(parsed.Answer, parsed.Score, contextText), nil
}

// ScoreSpan clamps the model's score and halves it when the answer is not a
// verbatim part of the context.
func ScoreSpan(answer string, score float64, contextText string) domain.Span {
	answer = strings.TrimSpace(answer)
	score = max(0, min(1, score))
	if answer == "" {
		return domain.Span{}
	}
	if !strings.Contains(strings.ToLower(contextText), strings.ToLower(answer)) {
		score /= 2
	}
	return domain.Span{Answer: answer, Score: score}
}

func ExtractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
