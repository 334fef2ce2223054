package store

import (
	"context"
	"errors"

	"github.com/pulsehq/pulse/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// FeedbackStore defines the contract for feedback record data access.
// Uniqueness of (source, source_id) is enforced by the store itself, not by
// callers: under concurrent ingestion the caller's dedup lookup is only an
// optimization.
type FeedbackStore interface {
	// Insert persists a new record. Returns false when a record with the same
	// (source, source_id) already exists; the existing row is left untouched.
	Insert(ctx context.Context, rec *model.FeedbackRecord) (bool, error)
	GetByID(ctx context.Context, id int64) (*model.FeedbackRecord, error)
	GetByDedupKey(ctx context.Context, source model.Source, sourceID string) (*model.FeedbackRecord, error)
	List(ctx context.Context, category string, status *model.Status) ([]model.FeedbackRecord, error)
	UpdateStatus(ctx context.Context, id int64, status model.Status) error
	Escalate(ctx context.Context, id int64, team model.Team, urgency int, notes *string) (*model.FeedbackRecord, error)
	UpdateNotes(ctx context.Context, id int64, notes string) error
	// BulkUpdateStatus transitions records in the category to the target
	// status. A nil from-filter matches any current status. Returns the number
	// of affected records.
	BulkUpdateStatus(ctx context.Context, category string, from *model.Status, to model.Status) (int64, error)
	DeleteAll(ctx context.Context) error
	// AggregateByCategory returns one row per distinct category present.
	AggregateByCategory(ctx context.Context) ([]CategoryAggregate, error)
}

// CategoryAggregate is a raw per-category rollup straight from the store.
// Rounding and presentation ordering belong to the insights service.
type CategoryAggregate struct {
	Category      string
	Total         int
	NewCount      int
	AvgUrgency    float64
	PositiveCount int
	NegativeCount int
	NeutralCount  int
	Sources       []string
}

// VectorStore defines the contract for the similarity index.
type VectorStore interface {
	Upsert(ctx context.Context, entry *model.VectorEntry) error
	// Query returns up to topK nearest entries with cosine similarity of at
	// least minScore, best first.
	Query(ctx context.Context, embedding []float32, topK int, minScore float64) ([]model.VectorMatch, error)
	DeleteAll(ctx context.Context) error
}
