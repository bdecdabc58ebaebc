// Package extraction holds the pure parts of question answering over loan
// documents: the answer validity filter, context assembly, prompts, the
// bulk question set and the confidence thresholds the pipeline applies.
package extraction

// Thresholds are the confidence cut-offs of the answer pipeline.
type Thresholds struct {
	// QAAccept is the extractive score an answer must exceed to be used
	// without trying the generative model.
	QAAccept float64
	// Found is the confidence a bulk answer must exceed to count as found.
	Found float64
	// Generated is the confidence assigned to generative answers.
	Generated     float64
	ClaimVerified float64
	ClaimUnclear  float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		QAAccept:      0.6,
		Found:         0.3,
		Generated:     0.7,
		ClaimVerified: 0.6,
		ClaimUnclear:  0.4,
	}
}

const (
	DefaultTopK         = 6
	ClaimPassages       = 4
	ContextBudget       = 3000
	minTruncatedContext = 200
	GenerativeContext   = 2000
	SnippetChars        = 200
	maxSources          = 3
)
