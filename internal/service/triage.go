package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pulsehq/pulse/common/logger"
	"github.com/pulsehq/pulse/internal/model"
	"github.com/pulsehq/pulse/internal/notify"
	"github.com/pulsehq/pulse/internal/store"
	"github.com/pulsehq/pulse/internal/stream"
)

// EscalationUrgency is forced onto every escalated record regardless of its
// prior score. Policy: anything escalated surfaces as top urgency.
const EscalationUrgency = 10

// Triage actions accepted by Apply.
const (
	ActionAcknowledge = "acknowledge"
	ActionResolve     = "resolve"
	ActionReopen      = "reopen"
	ActionEscalate    = "escalate"
	ActionAddNote     = "add_note"
)

// ErrInvalidTeam is returned when an escalation names an unknown team.
var ErrInvalidTeam = errors.New("invalid team")

// ErrMissingNotes is returned when add_note carries no notes text.
var ErrMissingNotes = errors.New("notes text is required")

// ActionParams carries the optional inputs a triage action may need.
type ActionParams struct {
	Team  string
	Notes *string
}

// Outcome reports what a triage action did. An unknown action is a
// diagnostic outcome, not an error: the record set is untouched and the
// caller decides how loudly to complain.
type Outcome struct {
	UnknownAction bool
	Record        *model.FeedbackRecord
	Notification  notify.Outcome
}

type TriageService interface {
	Apply(ctx context.Context, id int64, action string, params ActionParams) (*Outcome, error)
	BulkAcknowledge(ctx context.Context, category string) (int64, error)
	BulkResolve(ctx context.Context, category string) (int64, error)
	Clear(ctx context.Context) error
}

// VectorWiper is the slice of the similarity index Clear needs.
type VectorWiper interface {
	Clear(ctx context.Context)
}

type triageService struct {
	feedback store.FeedbackStore
	notifier notify.Notifier
	activity stream.Publisher
	vectors  VectorWiper
}

func NewTriageService(feedback store.FeedbackStore, notifier notify.Notifier, activity stream.Publisher, vectors VectorWiper) TriageService {
	return &triageService{
		feedback: feedback,
		notifier: notifier,
		activity: activity,
		vectors:  vectors,
	}
}

// Apply dispatches a single-record triage action. Every status transition is
// valid from every state; preconditions are deliberately not enforced here.
func (s *triageService) Apply(ctx context.Context, id int64, action string, params ActionParams) (*Outcome, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		FeedbackID: logger.Ptr(id),
		Action:     logger.Ptr(action),
	})

	switch action {
	case ActionAcknowledge:
		return s.transition(ctx, id, action, model.StatusAcknowledged)
	case ActionResolve:
		return s.transition(ctx, id, action, model.StatusResolved)
	case ActionReopen:
		return s.transition(ctx, id, action, model.StatusNew)
	case ActionEscalate:
		return s.escalate(ctx, id, params)
	case ActionAddNote:
		return s.addNote(ctx, id, params)
	default:
		slog.WarnContext(ctx, "unknown triage action ignored")
		return &Outcome{UnknownAction: true}, nil
	}
}

func (s *triageService) transition(ctx context.Context, id int64, action string, to model.Status) (*Outcome, error) {
	prior, err := s.feedback.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetching feedback: %w", err)
	}

	if err := s.feedback.UpdateStatus(ctx, id, to); err != nil {
		return nil, fmt.Errorf("applying %s: %w", action, err)
	}

	s.activity.Publish(ctx, stream.ActivityEvent{
		Action:     action,
		FeedbackID: id,
		FromStatus: string(prior.Status),
		ToStatus:   string(to),
	})

	prior.Status = to
	slog.InfoContext(ctx, "triage action applied", "to_status", to)
	return &Outcome{Record: prior}, nil
}

// escalate assigns the record to a team at forced maximum urgency. The state
// change commits first; notification and the activity stream are best-effort
// side effects that cannot roll it back.
func (s *triageService) escalate(ctx context.Context, id int64, params ActionParams) (*Outcome, error) {
	team, ok := model.ValidTeam(params.Team)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTeam, params.Team)
	}

	prior, err := s.feedback.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetching feedback: %w", err)
	}

	rec, err := s.feedback.Escalate(ctx, id, team, EscalationUrgency, params.Notes)
	if err != nil {
		return nil, fmt.Errorf("escalating feedback: %w", err)
	}

	outcome := s.notifier.Escalated(ctx, rec)

	s.activity.Publish(ctx, stream.ActivityEvent{
		Action:     ActionEscalate,
		FeedbackID: id,
		FromStatus: string(prior.Status),
		ToStatus:   string(model.StatusEscalated),
		Team:       string(team),
	})

	slog.InfoContext(ctx, "feedback escalated",
		"team", team,
		"notification", outcome)
	return &Outcome{Record: rec, Notification: outcome}, nil
}

func (s *triageService) addNote(ctx context.Context, id int64, params ActionParams) (*Outcome, error) {
	if params.Notes == nil {
		return nil, ErrMissingNotes
	}

	if err := s.feedback.UpdateNotes(ctx, id, *params.Notes); err != nil {
		return nil, fmt.Errorf("adding note: %w", err)
	}

	rec, err := s.feedback.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetching feedback: %w", err)
	}
	return &Outcome{Record: rec}, nil
}

func (s *triageService) BulkAcknowledge(ctx context.Context, category string) (int64, error) {
	from := model.StatusNew
	count, err := s.feedback.BulkUpdateStatus(ctx, category, &from, model.StatusAcknowledged)
	if err != nil {
		return 0, fmt.Errorf("bulk acknowledging %q: %w", category, err)
	}

	s.activity.Publish(ctx, stream.ActivityEvent{
		Action:   "bulk_acknowledge",
		Category: category,
		ToStatus: string(model.StatusAcknowledged),
		Count:    count,
	})

	slog.InfoContext(ctx, "bulk acknowledge applied", "category", category, "count", count)
	return count, nil
}

func (s *triageService) BulkResolve(ctx context.Context, category string) (int64, error) {
	count, err := s.feedback.BulkUpdateStatus(ctx, category, nil, model.StatusResolved)
	if err != nil {
		return 0, fmt.Errorf("bulk resolving %q: %w", category, err)
	}

	s.activity.Publish(ctx, stream.ActivityEvent{
		Action:   "bulk_resolve",
		Category: category,
		ToStatus: string(model.StatusResolved),
		Count:    count,
	})

	slog.InfoContext(ctx, "bulk resolve applied", "category", category, "count", count)
	return count, nil
}

// Clear removes every record, then wipes the index best-effort. A failed
// wipe leaves orphan vectors behind; search hydration drops them.
func (s *triageService) Clear(ctx context.Context) error {
	if err := s.feedback.DeleteAll(ctx); err != nil {
		return fmt.Errorf("clearing feedback: %w", err)
	}
	s.vectors.Clear(ctx)

	s.activity.Publish(ctx, stream.ActivityEvent{Action: "clear"})
	slog.InfoContext(ctx, "all feedback cleared")
	return nil
}
