package extraction

import (
	"fmt"
	"strings"
)

// GenerativePrompt asks the model to answer as a loan manager from the first
// 2000 characters of context.
func GenerativePrompt(question, context string) string {
	return fmt.Sprintf(`Act as Loan Manager and answer the question based on the context. If the answer is not in the context, say just "Not found".

Context: %s

Question: %s

Answer:`, truncate(context, GenerativeContext), question)
}

// CleanGenerated strips a leading "Answer:" echo.
func CleanGenerated(raw string) string {
	answer := strings.TrimSpace(raw)
	if len(answer) >= 7 && strings.EqualFold(answer[:7], "answer:") {
		answer = strings.TrimSpace(answer[7:])
	}
	return answer
}

// ClaimQuestion phrases a claim as a question for the extractive reader.
func ClaimQuestion(claim string) string {
	return "Does the document support: " + claim + "?"
}
