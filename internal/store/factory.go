package store

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Stores bundles every data access implementation behind one constructor.
type Stores struct {
	Feedback FeedbackStore
	Vectors  VectorStore
}

func New(pool *pgxpool.Pool) *Stores {
	return &Stores{
		Feedback: NewFeedbackStore(pool),
		Vectors:  NewVectorStore(pool),
	}
}
