package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pulsehq/pulse/internal/model"
)

type feedbackStore struct {
	pool *pgxpool.Pool
}

// NewFeedbackStore builds a FeedbackStore backed by PostgreSQL.
func NewFeedbackStore(pool *pgxpool.Pool) FeedbackStore {
	return &feedbackStore{pool: pool}
}

const feedbackColumns = `id, raw_text, category, sentiment, urgency_score, source, source_id,
	author, status, assigned_team, notes, created_at, updated_at`

func (s *feedbackStore) Insert(ctx context.Context, rec *model.FeedbackRecord) (bool, error) {
	// ON CONFLICT DO NOTHING makes the (source, source_id) uniqueness
	// constraint the correctness mechanism under concurrent ingestion: the
	// losing insert reports created=false instead of erroring.
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO feedback (id, raw_text, category, sentiment, urgency_score, source, source_id, author, status, assigned_team, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (source, source_id) DO NOTHING`,
		rec.ID,
		rec.RawText,
		rec.Category,
		rec.Sentiment,
		rec.UrgencyScore,
		rec.Source,
		rec.SourceID,
		rec.Author,
		rec.Status,
		rec.AssignedTeam,
		rec.Notes,
	)
	if err != nil {
		return false, fmt.Errorf("inserting feedback: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *feedbackStore) GetByID(ctx context.Context, id int64) (*model.FeedbackRecord, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+feedbackColumns+` FROM feedback WHERE id = $1`, id)
	return scanFeedback(row)
}

func (s *feedbackStore) GetByDedupKey(ctx context.Context, source model.Source, sourceID string) (*model.FeedbackRecord, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+feedbackColumns+` FROM feedback WHERE source = $1 AND source_id = $2`,
		source, sourceID)
	return scanFeedback(row)
}

func (s *feedbackStore) List(ctx context.Context, category string, status *model.Status) ([]model.FeedbackRecord, error) {
	query := `SELECT ` + feedbackColumns + ` FROM feedback`
	args := []any{}
	clause := func() string {
		if len(args) == 1 {
			return " WHERE"
		}
		return " AND"
	}

	if category != "" {
		args = append(args, category)
		query += clause() + fmt.Sprintf(" category = $%d", len(args))
	}
	if status != nil {
		args = append(args, *status)
		query += clause() + fmt.Sprintf(" status = $%d", len(args))
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing feedback: %w", err)
	}
	defer rows.Close()

	var result []model.FeedbackRecord
	for rows.Next() {
		rec, err := scanFeedback(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *rec)
	}
	return result, rows.Err()
}

func (s *feedbackStore) UpdateStatus(ctx context.Context, id int64, status model.Status) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE feedback SET status = $2, updated_at = now() WHERE id = $1`,
		id, status)
	if err != nil {
		return fmt.Errorf("updating status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *feedbackStore) Escalate(ctx context.Context, id int64, team model.Team, urgency int, notes *string) (*model.FeedbackRecord, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE feedback
		SET status = $2,
		    assigned_team = $3,
		    urgency_score = $4,
		    notes = COALESCE($5, notes),
		    updated_at = now()
		WHERE id = $1
		RETURNING `+feedbackColumns,
		id, model.StatusEscalated, team, urgency, notes)
	return scanFeedback(row)
}

func (s *feedbackStore) UpdateNotes(ctx context.Context, id int64, notes string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE feedback SET notes = $2, updated_at = now() WHERE id = $1`,
		id, notes)
	if err != nil {
		return fmt.Errorf("updating notes: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *feedbackStore) BulkUpdateStatus(ctx context.Context, category string, from *model.Status, to model.Status) (int64, error) {
	query := `UPDATE feedback SET status = $2, updated_at = now() WHERE category = $1`
	args := []any{category, to}
	if from != nil {
		args = append(args, *from)
		query += ` AND status = $3`
	}

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("bulk updating status: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *feedbackStore) DeleteAll(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM feedback`); err != nil {
		return fmt.Errorf("deleting feedback: %w", err)
	}
	return nil
}

func (s *feedbackStore) AggregateByCategory(ctx context.Context) ([]CategoryAggregate, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT category,
		       COUNT(*)                                          AS total,
		       COUNT(*) FILTER (WHERE status = 'new')            AS new_count,
		       AVG(urgency_score)                                AS avg_urgency,
		       COUNT(*) FILTER (WHERE sentiment = 'Positive')    AS positive_count,
		       COUNT(*) FILTER (WHERE sentiment = 'Negative')    AS negative_count,
		       COUNT(*) FILTER (WHERE sentiment = 'Neutral')     AS neutral_count,
		       ARRAY_AGG(DISTINCT source ORDER BY source)        AS sources
		FROM feedback
		GROUP BY category`)
	if err != nil {
		return nil, fmt.Errorf("aggregating feedback: %w", err)
	}
	defer rows.Close()

	var result []CategoryAggregate
	for rows.Next() {
		var agg CategoryAggregate
		if err := rows.Scan(
			&agg.Category,
			&agg.Total,
			&agg.NewCount,
			&agg.AvgUrgency,
			&agg.PositiveCount,
			&agg.NegativeCount,
			&agg.NeutralCount,
			&agg.Sources,
		); err != nil {
			return nil, fmt.Errorf("scanning aggregate row: %w", err)
		}
		result = append(result, agg)
	}
	return result, rows.Err()
}

func scanFeedback(row pgx.Row) (*model.FeedbackRecord, error) {
	var rec model.FeedbackRecord
	err := row.Scan(
		&rec.ID,
		&rec.RawText,
		&rec.Category,
		&rec.Sentiment,
		&rec.UrgencyScore,
		&rec.Source,
		&rec.SourceID,
		&rec.Author,
		&rec.Status,
		&rec.AssignedTeam,
		&rec.Notes,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}
