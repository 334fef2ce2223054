package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/pulsehq/pulse/common/id"
	"github.com/pulsehq/pulse/common/logger"
	"github.com/pulsehq/pulse/internal/index"
	"github.com/pulsehq/pulse/internal/model"
	"github.com/pulsehq/pulse/internal/store"
)

// InboundItem is one piece of feedback as it arrives from a channel.
type InboundItem struct {
	Text     string `json:"text"`
	Source   string `json:"source"`
	SourceID string `json:"source_id"`
	Author   string `json:"author"`
}

// IngestResult summarizes one batch. Counts always add up: every received
// item ends as created, skipped, or invalid; every created item ends as
// indexed or index-failed.
type IngestResult struct {
	Received    int `json:"received"`
	Created     int `json:"created"`
	Skipped     int `json:"skipped"`
	Invalid     int `json:"invalid"`
	Indexed     int `json:"indexed"`
	IndexFailed int `json:"index_failed"`
}

type IngestService interface {
	Ingest(ctx context.Context, items []InboundItem) (*IngestResult, error)
}

// Indexer is the slice of the similarity index the pipeline needs.
type Indexer interface {
	Index(ctx context.Context, rec *model.FeedbackRecord) index.IndexResult
}

type ingestService struct {
	feedback store.FeedbackStore
	analyzer Classifier
	indexer  Indexer
}

// Classifier produces a validated analysis for raw feedback text.
type Classifier interface {
	Analyze(ctx context.Context, text string) model.FeedbackAnalysis
}

func NewIngestService(feedback store.FeedbackStore, analyzer Classifier, indexer Indexer) IngestService {
	return &ingestService{
		feedback: feedback,
		analyzer: analyzer,
		indexer:  indexer,
	}
}

// Ingest processes items sequentially. Per-item failures never abort the
// batch: classification degrades to the default analysis, indexing is
// best-effort, and a concurrent duplicate insert counts as a skip.
func (s *ingestService) Ingest(ctx context.Context, items []InboundItem) (*IngestResult, error) {
	result := &IngestResult{Received: len(items)}

	for _, item := range items {
		source, ok := validateItem(item)
		if !ok {
			slog.WarnContext(ctx, "invalid ingest item dropped",
				"source", item.Source,
				"source_id", item.SourceID)
			result.Invalid++
			continue
		}

		itemCtx := logger.WithLogFields(ctx, logger.LogFields{
			Source:   logger.Ptr(string(source)),
			SourceID: logger.Ptr(item.SourceID),
		})

		// Dedup lookup is an optimization only: the unique constraint on
		// (source, source_id) is what holds under concurrent ingestion.
		_, err := s.feedback.GetByDedupKey(itemCtx, source, item.SourceID)
		if err == nil {
			result.Skipped++
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			// Fall through to the insert: the unique constraint still
			// catches a duplicate if one exists.
			slog.WarnContext(itemCtx, "dedup lookup failed, relying on unique constraint", "error", err)
		}

		analysis := s.analyzer.Analyze(itemCtx, item.Text)

		team := analysis.SuggestedTeam
		rec := &model.FeedbackRecord{
			ID:           id.New(),
			RawText:      item.Text,
			Category:     analysis.Category,
			Sentiment:    analysis.Sentiment,
			UrgencyScore: analysis.Urgency,
			Source:       source,
			SourceID:     item.SourceID,
			Author:       item.Author,
			Status:       model.StatusNew,
			AssignedTeam: &team,
		}

		created, err := s.feedback.Insert(itemCtx, rec)
		if err != nil {
			slog.ErrorContext(itemCtx, "insert failed, item skipped", "error", err)
			result.Skipped++
			continue
		}
		if !created {
			// Lost the race to a concurrent insert of the same dedup key.
			result.Skipped++
			continue
		}
		result.Created++

		// Index the original raw text so queries and indexed content share
		// the same semantic space.
		if s.indexer.Index(itemCtx, rec).Ok {
			result.Indexed++
		} else {
			result.IndexFailed++
		}
	}

	slog.InfoContext(ctx, "ingest batch complete",
		"received", result.Received,
		"created", result.Created,
		"skipped", result.Skipped,
		"invalid", result.Invalid,
		"indexed", result.Indexed,
		"index_failed", result.IndexFailed)
	return result, nil
}

func validateItem(item InboundItem) (model.Source, bool) {
	if strings.TrimSpace(item.Text) == "" || item.SourceID == "" {
		return "", false
	}
	source, ok := model.ValidSource(item.Source)
	if !ok {
		return "", false
	}
	return source, true
}
