package model

// VectorEntry is the indexed representation of one feedback record, keyed by
// the record id. The metadata columns are a snapshot taken at indexing time;
// later status or urgency changes do not re-index.
type VectorEntry struct {
	FeedbackID   int64     `json:"feedback_id"`
	Embedding    []float32 `json:"embedding"`
	Category     string    `json:"category"`
	Sentiment    Sentiment `json:"sentiment"`
	UrgencyScore int       `json:"urgency_score"`
	TextPreview  string    `json:"text_preview"`
}

// VectorMatch is one nearest-neighbor hit with its cosine similarity in [0,1].
type VectorMatch struct {
	FeedbackID int64   `json:"feedback_id"`
	Score      float64 `json:"score"`
}

// SearchMatch pairs a hydrated record with its similarity percentage.
type SearchMatch struct {
	Record     FeedbackRecord `json:"record"`
	Similarity int            `json:"similarity"` // round(score*100)
}
