package domain

// DocumentChunk is one word window of a document. It is identified inside a
// loan index by its position, not by ChunkIndex.
type DocumentChunk struct {
	Text       string `json:"text"`
	ChunkIndex int    `json:"chunk_index"`
	SourceFile string `json:"source_file"`
	DocType    string `json:"doc_type"`
	Page       *int   `json:"page,omitempty"`
}

// IndexedChunk is the metadata entry stored in parallel with one vector.
type IndexedChunk struct {
	LoanID     string `json:"loan_id"`
	ChunkIndex int    `json:"chunk_index"`
	Text       string `json:"text"`
	Source     string `json:"source"`
	DocType    string `json:"doc_type"`
	Page       *int   `json:"page,omitempty"`
}

type SearchQuery struct {
	Text    string
	LoanID  string
	K       int
	DocType string
}

type SearchHit struct {
	Text       string  `json:"text"`
	Source     string  `json:"source"`
	Score      float64 `json:"score"`
	LoanID     string  `json:"loan_id"`
	DocType    string  `json:"doc_type"`
	ChunkIndex int     `json:"chunk_index"`
	Page       *int    `json:"page,omitempty"`
}

type LoanIndexStats struct {
	LoanID     string   `json:"loan_id"`
	ChunkCount int      `json:"chunk_count"`
	Sources    []string `json:"sources"`
}

type IndexStats struct {
	TotalChunks int `json:"total_chunks"`
	UniqueLoans int `json:"unique_loans"`
}
