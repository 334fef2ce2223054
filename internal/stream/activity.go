package stream

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// ActivityEvent is one triage transition for the audit trail.
type ActivityEvent struct {
	Action     string
	FeedbackID int64
	FromStatus string
	ToStatus   string
	Team       string
	Category   string
	Count      int64
}

// Publisher records triage activity. Publishing is best-effort: callers never
// treat a publish failure as a failed transition.
type Publisher interface {
	Publish(ctx context.Context, event ActivityEvent)
}

type redisPublisher struct {
	client *redis.Client
	stream string
}

// NewRedisPublisher builds a Publisher that appends triage events to a Redis
// stream via XADD.
func NewRedisPublisher(client *redis.Client, stream string) Publisher {
	return &redisPublisher{client: client, stream: stream}
}

func (p *redisPublisher) Publish(ctx context.Context, event ActivityEvent) {
	fields := map[string]any{
		"action": event.Action,
		"at":     time.Now().UTC().Format(time.RFC3339),
	}
	if event.FeedbackID != 0 {
		fields["feedback_id"] = event.FeedbackID
	}
	if event.FromStatus != "" {
		fields["from_status"] = event.FromStatus
	}
	if event.ToStatus != "" {
		fields["to_status"] = event.ToStatus
	}
	if event.Team != "" {
		fields["team"] = event.Team
	}
	if event.Category != "" {
		fields["category"] = event.Category
	}
	if event.Count != 0 {
		fields["count"] = event.Count
	}

	if err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: fields,
	}).Err(); err != nil {
		slog.WarnContext(ctx, "activity publish failed",
			"action", event.Action,
			"feedback_id", event.FeedbackID,
			"error", err)
		return
	}

	slog.DebugContext(ctx, "activity published",
		"action", event.Action,
		"feedback_id", event.FeedbackID)
}

// NopPublisher drops every event. Used when Redis is not configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, ActivityEvent) {}
