package model

// SentimentBreakdown holds per-sentiment record counts for one category.
type SentimentBreakdown struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
}

// CategoryInsight is a derived rollup for one category. It is recomputed on
// read from the current record set, never stored.
type CategoryInsight struct {
	Category   string             `json:"category"`
	Total      int                `json:"total"`
	NewCount   int                `json:"new_count"`
	AvgUrgency float64            `json:"avg_urgency"` // rounded to one decimal
	Sentiment  SentimentBreakdown `json:"sentiment"`
	Sources    []string           `json:"sources"` // distinct, lexicographic
}
