package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/pulsehq/pulse/internal/index"
	"github.com/pulsehq/pulse/internal/model"
	"github.com/pulsehq/pulse/internal/store"
)

// ErrEmptyQuery is returned when a search query is empty or whitespace.
var ErrEmptyQuery = errors.New("search query is empty")

// searchTopK caps how many candidates the index is asked for.
const searchTopK = 20

// SearchResult is a ranked result set. Message is set only when no candidate
// cleared the similarity threshold, so callers can tell "nothing relevant"
// from "nothing indexed".
type SearchResult struct {
	Matches []model.SearchMatch `json:"matches"`
	Message string              `json:"message,omitempty"`
}

type SearchService interface {
	Search(ctx context.Context, query string) (*SearchResult, error)
}

// Querier is the slice of the similarity index the search engine needs.
type Querier interface {
	Query(ctx context.Context, text string, topK int) []model.VectorMatch
}

type searchService struct {
	feedback store.FeedbackStore
	querier  Querier
}

func NewSearchService(feedback store.FeedbackStore, querier Querier) SearchService {
	return &searchService{feedback: feedback, querier: querier}
}

func (s *searchService) Search(ctx context.Context, query string) (*SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	candidates := s.querier.Query(ctx, query, searchTopK)
	if len(candidates) == 0 {
		return &SearchResult{
			Matches: []model.SearchMatch{},
			Message: fmt.Sprintf("no feedback matched above the %.2f similarity threshold", index.MinSimilarityThreshold),
		}, nil
	}

	// Hydration may lose both records and ordering: ids whose record has
	// since been deleted are dropped, and the survivors are re-sorted.
	matches := make([]model.SearchMatch, 0, len(candidates))
	for _, c := range candidates {
		rec, err := s.feedback.GetByID(ctx, c.FeedbackID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				slog.DebugContext(ctx, "search candidate no longer exists", "feedback_id", c.FeedbackID)
				continue
			}
			return nil, fmt.Errorf("hydrating search result: %w", err)
		}
		matches = append(matches, model.SearchMatch{
			Record:     *rec,
			Similarity: int(math.Round(c.Score * 100)),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})

	return &SearchResult{Matches: matches}, nil
}
