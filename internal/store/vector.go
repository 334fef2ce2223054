package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pulsehq/pulse/internal/model"
)

type vectorStore struct {
	pool *pgxpool.Pool
}

// NewVectorStore builds a VectorStore backed by pgvector.
func NewVectorStore(pool *pgxpool.Pool) VectorStore {
	return &vectorStore{pool: pool}
}

func (s *vectorStore) Upsert(ctx context.Context, entry *model.VectorEntry) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO feedback_vectors (feedback_id, embedding, category, sentiment, urgency_score, text_preview)
		VALUES ($1, $2::vector, $3, $4, $5, $6)
		ON CONFLICT (feedback_id) DO UPDATE SET
			embedding = EXCLUDED.embedding,
			category = EXCLUDED.category,
			sentiment = EXCLUDED.sentiment,
			urgency_score = EXCLUDED.urgency_score,
			text_preview = EXCLUDED.text_preview`,
		entry.FeedbackID,
		vectorString(entry.Embedding),
		entry.Category,
		entry.Sentiment,
		entry.UrgencyScore,
		entry.TextPreview,
	)
	if err != nil {
		return fmt.Errorf("upserting vector: %w", err)
	}
	return nil
}

func (s *vectorStore) Query(ctx context.Context, embedding []float32, topK int, minScore float64) ([]model.VectorMatch, error) {
	// Cosine similarity is 1 minus pgvector's <=> distance. Ordering by the
	// raw distance keeps the HNSW index usable.
	rows, err := s.pool.Query(ctx, `
		SELECT feedback_id, 1 - (embedding <=> $1::vector) AS score
		FROM feedback_vectors
		WHERE 1 - (embedding <=> $1::vector) >= $2
		ORDER BY embedding <=> $1::vector
		LIMIT $3`,
		vectorString(embedding), minScore, topK)
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}
	defer rows.Close()

	var matches []model.VectorMatch
	for rows.Next() {
		var m model.VectorMatch
		if err := rows.Scan(&m.FeedbackID, &m.Score); err != nil {
			return nil, fmt.Errorf("scanning vector match: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (s *vectorStore) DeleteAll(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM feedback_vectors`); err != nil {
		return fmt.Errorf("deleting vectors: %w", err)
	}
	return nil
}

// vectorString renders an embedding as a pgvector literal, e.g. "[0.1,0.2]".
func vectorString(embedding []float32) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range embedding {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatFloat(float64(v), 'f', -1, 32))
	}
	sb.WriteByte(']')
	return sb.String()
}
