package docsystem

// QueryRequest asks the backend to generate a draft answer.
type QueryRequest struct {
	Question string  `json:"question"`
	FolderID *string `json:"folder_id"` // nil = search all folders
	TopK     int     `json:"top_k"`
}

// Evidence is a retrieved passage in the single shape the rest of the client
// works with, whatever combination of fields the backend sent.
type Evidence struct {
	ID         string   `json:"id"`
	Question   string   `json:"question,omitempty"` // set for Q&A chunks
	Text       string   `json:"text"`
	FileName   string   `json:"file_name"`
	DocumentID string   `json:"document_id,omitempty"`
	FolderID   *string  `json:"folder_id,omitempty"`
	Page       *int     `json:"page,omitempty"`
	Score      *float64 `json:"score,omitempty"`
}

// SourceChunk is one passage inside a per-document source summary.
type SourceChunk struct {
	Text  string   `json:"text"`
	Score *float64 `json:"score,omitempty"`
}

// SourceSummary groups the retrieved passages of one document.
type SourceSummary struct {
	DocumentID string        `json:"document_id"`
	FileName   string        `json:"file_name"`
	Chunks     []SourceChunk `json:"chunks"`
	MaxScore   float64       `json:"max_score"`
}

// DraftResult is a generated answer plus the evidence it was built from.
type DraftResult struct {
	Draft     string          `json:"draft"`
	Evidences []Evidence      `json:"evidences"`
	Sources   []SourceSummary `json:"sources,omitempty"`
}

// HasEvidence reports whether any passage backs the draft.
func (r *DraftResult) HasEvidence() bool {
	return len(r.Evidences) > 0
}
