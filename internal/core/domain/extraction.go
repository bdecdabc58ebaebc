package domain

type ExtractionStrategy string

const (
	StrategyNone       ExtractionStrategy = "none"
	StrategyExtractive ExtractionStrategy = "extractive"
	StrategyGenerative ExtractionStrategy = "generative"
	StrategyFallback   ExtractionStrategy = "extractive_fallback"
)

// Span is the answer the extractive reader picked out of a context.
type Span struct {
	Answer string  `json:"answer"`
	Score  float64 `json:"score"`
}

type SourceSnippet struct {
	TextSnippet string  `json:"text_snippet"`
	Source      string  `json:"source"`
	Score       float64 `json:"score"`
}

type ExtractionResult struct {
	Question   string             `json:"question"`
	Answer     string             `json:"answer"`
	Confidence float64            `json:"confidence"`
	Strategy   ExtractionStrategy `json:"strategy"`
	Sources    []SourceSnippet    `json:"sources"`
}

type FieldExtraction struct {
	Question   string  `json:"question"`
	Answer     string  `json:"answer"`
	Confidence float64 `json:"confidence"`
	Found      bool    `json:"found"`
}

type ClaimVerdict string

const (
	ClaimVerified   ClaimVerdict = "Verified"
	ClaimUnclear    ClaimVerdict = "Unclear"
	ClaimUnverified ClaimVerdict = "Unverified"
	ClaimNoEvidence ClaimVerdict = "No evidence found"
)

type ClaimVerification struct {
	Claim      string          `json:"claim"`
	Verified   bool            `json:"verified"`
	Confidence float64         `json:"confidence"`
	Conclusion ClaimVerdict    `json:"conclusion"`
	Answer     string          `json:"answer,omitempty"`
	Evidence   []SourceSnippet `json:"evidence"`
}

// Claim is a fact asserted by an extraction, scored by its confidence.
type Claim struct {
	Type       string  `json:"type"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

type Evidence struct {
	Source string  `json:"source"`
	Text   string  `json:"text"`
	Score  float64 `json:"score"`
}
