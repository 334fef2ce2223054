package index

import (
	"context"
	"log/slog"

	"github.com/pulsehq/pulse/common/llm"
	"github.com/pulsehq/pulse/internal/model"
	"github.com/pulsehq/pulse/internal/store"
)

// MinSimilarityThreshold is the lowest cosine similarity a match may have and
// still be returned. The boundary is inclusive.
const MinSimilarityThreshold = 0.5

// previewLen caps the text snapshot stored alongside each vector.
const previewLen = 200

// IndexResult reports the outcome of one indexing attempt. Indexing is
// best-effort enrichment; failures are values, never errors.
type IndexResult struct {
	Ok     bool
	Reason string
}

func indexed() IndexResult                  { return IndexResult{Ok: true} }
func indexFailed(reason string) IndexResult { return IndexResult{Reason: reason} }

// Adapter owns the embed-then-store pipeline for the similarity index.
type Adapter struct {
	embedder llm.Embedder
	vectors  store.VectorStore
}

func NewAdapter(embedder llm.Embedder, vectors store.VectorStore) *Adapter {
	return &Adapter{embedder: embedder, vectors: vectors}
}

// Index embeds the record's raw text and upserts it with a metadata snapshot.
// The snapshot is taken once; later triage changes do not re-index.
func (a *Adapter) Index(ctx context.Context, rec *model.FeedbackRecord) IndexResult {
	embedding, err := a.embedder.Embed(ctx, rec.RawText)
	if err != nil {
		slog.WarnContext(ctx, "embedding failed, record not indexed",
			"feedback_id", rec.ID,
			"error", err)
		return indexFailed("embedding failed")
	}

	entry := &model.VectorEntry{
		FeedbackID:   rec.ID,
		Embedding:    embedding,
		Category:     rec.Category,
		Sentiment:    rec.Sentiment,
		UrgencyScore: rec.UrgencyScore,
		TextPreview:  truncate(rec.RawText, previewLen),
	}
	if err := a.vectors.Upsert(ctx, entry); err != nil {
		slog.WarnContext(ctx, "vector upsert failed, record not indexed",
			"feedback_id", rec.ID,
			"error", err)
		return indexFailed("vector upsert failed")
	}
	return indexed()
}

// Query embeds the query text and returns up to topK matches at or above
// MinSimilarityThreshold, best first. Fails open: any error yields an empty
// result so search degrades instead of breaking.
func (a *Adapter) Query(ctx context.Context, text string, topK int) []model.VectorMatch {
	embedding, err := a.embedder.Embed(ctx, text)
	if err != nil {
		slog.WarnContext(ctx, "query embedding failed", "error", err)
		return nil
	}

	matches, err := a.vectors.Query(ctx, embedding, topK, MinSimilarityThreshold)
	if err != nil {
		slog.WarnContext(ctx, "vector query failed", "error", err)
		return nil
	}
	return matches
}

// Clear wipes the index. Best-effort: a failure leaves stale vectors behind,
// which hydration tolerates.
func (a *Adapter) Clear(ctx context.Context) {
	if err := a.vectors.DeleteAll(ctx); err != nil {
		slog.WarnContext(ctx, "vector wipe failed, stale entries remain", "error", err)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
