package service

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/pulsehq/pulse/internal/model"
	"github.com/pulsehq/pulse/internal/store"
)

type InsightService interface {
	Insights(ctx context.Context) ([]model.CategoryInsight, error)
}

type insightService struct {
	feedback store.FeedbackStore
}

func NewInsightService(feedback store.FeedbackStore) InsightService {
	return &insightService{feedback: feedback}
}

// Insights recomputes per-category rollups from the current record set.
// Nothing here is stored; every call reflects the records as they are now.
func (s *insightService) Insights(ctx context.Context) ([]model.CategoryInsight, error) {
	aggregates, err := s.feedback.AggregateByCategory(ctx)
	if err != nil {
		return nil, fmt.Errorf("computing insights: %w", err)
	}

	insights := make([]model.CategoryInsight, len(aggregates))
	for i, agg := range aggregates {
		insights[i] = buildInsight(agg)
	}
	sortInsights(insights)
	return insights, nil
}

func buildInsight(agg store.CategoryAggregate) model.CategoryInsight {
	sources := agg.Sources
	if sources == nil {
		sources = []string{}
	}
	sort.Strings(sources)

	return model.CategoryInsight{
		Category:   agg.Category,
		Total:      agg.Total,
		NewCount:   agg.NewCount,
		AvgUrgency: math.Round(agg.AvgUrgency*10) / 10,
		Sentiment: model.SentimentBreakdown{
			Positive: agg.PositiveCount,
			Negative: agg.NegativeCount,
			Neutral:  agg.NeutralCount,
		},
		Sources: sources,
	}
}

// sortInsights orders categories with the most unacknowledged and most urgent
// feedback first. Category name breaks remaining ties deterministically.
func sortInsights(insights []model.CategoryInsight) {
	sort.Slice(insights, func(i, j int) bool {
		a, b := insights[i], insights[j]
		if a.NewCount != b.NewCount {
			return a.NewCount > b.NewCount
		}
		if a.AvgUrgency != b.AvgUrgency {
			return a.AvgUrgency > b.AvgUrgency
		}
		return a.Category < b.Category
	})
}
