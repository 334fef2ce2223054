package service_test

import (
	"context"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/pulsehq/pulse/internal/model"
	"github.com/pulsehq/pulse/internal/notify"
	"github.com/pulsehq/pulse/internal/service"
	"github.com/pulsehq/pulse/internal/store"
)

var _ = Describe("TriageService", func() {
	var (
		svc      service.TriageService
		feedback *mockFeedbackStore
		notifier *mockNotifier
		activity *mockPublisher
		wiper    *mockWiper
		ctx      context.Context
	)

	existing := func(status model.Status) *model.FeedbackRecord {
		return &model.FeedbackRecord{
			ID:           7,
			RawText:      "checkout broken",
			Category:     "Bug",
			Sentiment:    model.SentimentNegative,
			UrgencyScore: 6,
			Source:       model.SourceSupport,
			SourceID:     "t-100",
			Status:       status,
		}
	}

	BeforeEach(func() {
		ctx = context.Background()
		feedback = &mockFeedbackStore{}
		notifier = &mockNotifier{}
		activity = &mockPublisher{}
		wiper = &mockWiper{}
		svc = service.NewTriageService(feedback, notifier, activity, wiper)
	})

	Describe("Apply", func() {
		Context("acknowledge", func() {
			BeforeEach(func() {
				feedback.getByIDFn = func(ctx context.Context, id int64) (*model.FeedbackRecord, error) {
					return existing(model.StatusNew), nil
				}
			})

			It("transitions to acknowledged and records the activity", func() {
				var updated model.Status
				feedback.updateStatusFn = func(ctx context.Context, id int64, status model.Status) error {
					updated = status
					return nil
				}

				outcome, err := svc.Apply(ctx, 7, service.ActionAcknowledge, service.ActionParams{})
				Expect(err).NotTo(HaveOccurred())
				Expect(outcome.UnknownAction).To(BeFalse())
				Expect(updated).To(Equal(model.StatusAcknowledged))

				Expect(activity.events).To(HaveLen(1))
				Expect(activity.events[0].Action).To(Equal(service.ActionAcknowledge))
				Expect(activity.events[0].FromStatus).To(Equal("new"))
				Expect(activity.events[0].ToStatus).To(Equal("acknowledged"))
			})
		})

		Context("with an unknown action", func() {
			It("reports a diagnostic outcome without touching the record", func() {
				outcome, err := svc.Apply(ctx, 7, "promote", service.ActionParams{})
				Expect(err).NotTo(HaveOccurred())
				Expect(outcome.UnknownAction).To(BeTrue())
				Expect(activity.events).To(BeEmpty())
			})
		})

		Context("with a missing record", func() {
			It("surfaces not found", func() {
				_, err := svc.Apply(ctx, 99, service.ActionResolve, service.ActionParams{})
				Expect(err).To(MatchError(store.ErrNotFound))
			})
		})

		Context("escalate", func() {
			BeforeEach(func() {
				feedback.getByIDFn = func(ctx context.Context, id int64) (*model.FeedbackRecord, error) {
					return existing(model.StatusAcknowledged), nil
				}
				feedback.escalateFn = func(ctx context.Context, id int64, team model.Team, urgency int, notes *string) (*model.FeedbackRecord, error) {
					rec := existing(model.StatusEscalated)
					rec.AssignedTeam = &team
					rec.UrgencyScore = urgency
					rec.Notes = notes
					return rec, nil
				}
			})

			It("forces maximum urgency and assigns the team", func() {
				outcome, err := svc.Apply(ctx, 7, service.ActionEscalate, service.ActionParams{Team: "security"})
				Expect(err).NotTo(HaveOccurred())
				Expect(outcome.Record.UrgencyScore).To(Equal(service.EscalationUrgency))
				Expect(*outcome.Record.AssignedTeam).To(Equal(model.TeamSecurity))
			})

			It("notifies after the state change", func() {
				outcome, err := svc.Apply(ctx, 7, service.ActionEscalate, service.ActionParams{Team: "engineering"})
				Expect(err).NotTo(HaveOccurred())
				Expect(notifier.notified).To(HaveLen(1))
				Expect(outcome.Notification).To(Equal(notify.Delivered))
			})

			It("succeeds even when notification delivery fails", func() {
				notifier.outcome = notify.Failed
				outcome, err := svc.Apply(ctx, 7, service.ActionEscalate, service.ActionParams{Team: "engineering"})
				Expect(err).NotTo(HaveOccurred())
				Expect(outcome.Record.Status).To(Equal(model.StatusEscalated))
				Expect(outcome.Notification).To(Equal(notify.Failed))
			})

			It("rejects an unknown team", func() {
				_, err := svc.Apply(ctx, 7, service.ActionEscalate, service.ActionParams{Team: "ops"})
				Expect(err).To(MatchError(service.ErrInvalidTeam))
				Expect(notifier.notified).To(BeEmpty())
			})
		})

		Context("add_note", func() {
			BeforeEach(func() {
				feedback.getByIDFn = func(ctx context.Context, id int64) (*model.FeedbackRecord, error) {
					rec := existing(model.StatusNew)
					notes := "talked to the customer"
					rec.Notes = &notes
					return rec, nil
				}
			})

			It("updates notes without a status change", func() {
				var savedNotes string
				feedback.updateNotesFn = func(ctx context.Context, id int64, notes string) error {
					savedNotes = notes
					return nil
				}

				notes := "talked to the customer"
				outcome, err := svc.Apply(ctx, 7, service.ActionAddNote, service.ActionParams{Notes: &notes})
				Expect(err).NotTo(HaveOccurred())
				Expect(savedNotes).To(Equal(notes))
				Expect(outcome.Record.Status).To(Equal(model.StatusNew))
			})
		})
	})

	Describe("BulkAcknowledge", func() {
		It("only transitions records currently in new", func() {
			feedback.bulkUpdateStatusFn = func(ctx context.Context, category string, from *model.Status, to model.Status) (int64, error) {
				Expect(from).NotTo(BeNil())
				Expect(*from).To(Equal(model.StatusNew))
				Expect(to).To(Equal(model.StatusAcknowledged))
				return 3, nil
			}

			count, err := svc.BulkAcknowledge(ctx, "Bug")
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(int64(3)))
		})
	})

	Describe("BulkResolve", func() {
		It("transitions records in any status", func() {
			feedback.bulkUpdateStatusFn = func(ctx context.Context, category string, from *model.Status, to model.Status) (int64, error) {
				Expect(from).To(BeNil())
				Expect(to).To(Equal(model.StatusResolved))
				return 5, nil
			}

			count, err := svc.BulkResolve(ctx, "Bug")
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(int64(5)))
		})
	})

	Describe("Clear", func() {
		It("deletes records and wipes the index", func() {
			Expect(svc.Clear(ctx)).To(Succeed())
			Expect(wiper.cleared).To(Equal(1))
		})

		It("does not wipe the index when the delete fails", func() {
			feedback.deleteAllFn = func(ctx context.Context) error {
				return fmt.Errorf("connection reset")
			}
			Expect(svc.Clear(ctx)).NotTo(Succeed())
			Expect(wiper.cleared).To(BeZero())
		})
	})
})
