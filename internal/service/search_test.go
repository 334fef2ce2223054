package service_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/pulsehq/pulse/internal/model"
	"github.com/pulsehq/pulse/internal/service"
	"github.com/pulsehq/pulse/internal/store"
)

var _ = Describe("SearchService", func() {
	var (
		svc      service.SearchService
		feedback *mockFeedbackStore
		querier  *mockQuerier
		ctx      context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		feedback = &mockFeedbackStore{}
		querier = &mockQuerier{}
		svc = service.NewSearchService(feedback, querier)
	})

	Describe("Search", func() {
		It("rejects an empty query", func() {
			_, err := svc.Search(ctx, "   ")
			Expect(err).To(MatchError(service.ErrEmptyQuery))
		})

		Context("when nothing clears the threshold", func() {
			It("returns an empty result with an explanatory message", func() {
				result, err := svc.Search(ctx, "slow dashboard")
				Expect(err).NotTo(HaveOccurred())
				Expect(result.Matches).To(BeEmpty())
				Expect(result.Message).To(ContainSubstring("0.50"))
			})
		})

		Context("with candidates", func() {
			BeforeEach(func() {
				querier.queryFn = func(ctx context.Context, text string, topK int) []model.VectorMatch {
					Expect(topK).To(Equal(20))
					return []model.VectorMatch{
						{FeedbackID: 1, Score: 0.91},
						{FeedbackID: 2, Score: 0.74},
						{FeedbackID: 3, Score: 0.66},
					}
				}
				feedback.getByIDFn = func(ctx context.Context, id int64) (*model.FeedbackRecord, error) {
					if id == 2 {
						return nil, store.ErrNotFound
					}
					return &model.FeedbackRecord{ID: id, Category: "Bug"}, nil
				}
			})

			It("hydrates, drops missing records, and attaches percentages", func() {
				result, err := svc.Search(ctx, "login crash")
				Expect(err).NotTo(HaveOccurred())
				Expect(result.Matches).To(HaveLen(2))
				Expect(result.Matches[0].Record.ID).To(Equal(int64(1)))
				Expect(result.Matches[0].Similarity).To(Equal(91))
				Expect(result.Matches[1].Record.ID).To(Equal(int64(3)))
				Expect(result.Matches[1].Similarity).To(Equal(66))
				Expect(result.Message).To(BeEmpty())
			})
		})

		Context("when hydration returns out of score order", func() {
			BeforeEach(func() {
				querier.queryFn = func(ctx context.Context, text string, topK int) []model.VectorMatch {
					return []model.VectorMatch{
						{FeedbackID: 1, Score: 0.60},
						{FeedbackID: 2, Score: 0.95},
					}
				}
				feedback.getByIDFn = func(ctx context.Context, id int64) (*model.FeedbackRecord, error) {
					return &model.FeedbackRecord{ID: id}, nil
				}
			})

			It("re-sorts by similarity descending", func() {
				result, err := svc.Search(ctx, "anything")
				Expect(err).NotTo(HaveOccurred())
				Expect(result.Matches[0].Similarity).To(Equal(95))
				Expect(result.Matches[1].Similarity).To(Equal(60))
			})
		})
	})
})
