package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/pulsehq/pulse/internal/model"
)

// Outcome reports what happened to one notification attempt. Delivery is
// best-effort side channel work, so outcomes are values rather than errors.
type Outcome string

const (
	Delivered Outcome = "delivered"
	Skipped   Outcome = "skipped"
	Failed    Outcome = "failed"
)

// Notifier announces escalations to the configured channel.
type Notifier interface {
	Escalated(ctx context.Context, rec *model.FeedbackRecord) Outcome
}

type slackMessage struct {
	Text   string       `json:"text,omitempty"`
	Blocks []slackBlock `json:"blocks,omitempty"`
}

type slackBlock struct {
	Type   string            `json:"type"`
	Text   *slackTextObject  `json:"text,omitempty"`
	Fields []slackTextObject `json:"fields,omitempty"`
}

type slackTextObject struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// SlackNotifier posts escalation announcements to a Slack incoming webhook.
// An empty webhook URL disables it: every call reports Skipped.
type SlackNotifier struct {
	webhookURL string
	client     *http.Client
}

func NewSlackNotifier(webhookURL string) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 5 * time.Second},
	}
}

func (n *SlackNotifier) Escalated(ctx context.Context, rec *model.FeedbackRecord) Outcome {
	if n.webhookURL == "" {
		return Skipped
	}

	msg := buildEscalationMessage(rec)
	body, err := json.Marshal(msg)
	if err != nil {
		slog.WarnContext(ctx, "escalation notification not sent",
			"feedback_id", rec.ID,
			"error", err)
		return Failed
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		slog.WarnContext(ctx, "escalation notification not sent",
			"feedback_id", rec.ID,
			"error", err)
		return Failed
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		slog.WarnContext(ctx, "escalation notification not sent",
			"feedback_id", rec.ID,
			"error", err)
		return Failed
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		slog.WarnContext(ctx, "escalation notification rejected",
			"feedback_id", rec.ID,
			"status_code", resp.StatusCode)
		return Failed
	}

	slog.InfoContext(ctx, "escalation notification delivered", "feedback_id", rec.ID)
	return Delivered
}

func buildEscalationMessage(rec *model.FeedbackRecord) slackMessage {
	team := "unassigned"
	if rec.AssignedTeam != nil {
		team = string(*rec.AssignedTeam)
	}

	preview := rec.RawText
	if len(preview) > 200 {
		preview = preview[:200] + "…"
	}

	return slackMessage{
		Text: fmt.Sprintf("Feedback escalated to %s", team),
		Blocks: []slackBlock{
			{
				Type: "section",
				Text: &slackTextObject{
					Type: "mrkdwn",
					Text: fmt.Sprintf(":rotating_light: *Feedback escalated* to *%s*", team),
				},
			},
			{
				Type: "section",
				Fields: []slackTextObject{
					{Type: "mrkdwn", Text: fmt.Sprintf("*Category:*\n%s", rec.Category)},
					{Type: "mrkdwn", Text: fmt.Sprintf("*Urgency:*\n%d/10", rec.UrgencyScore)},
					{Type: "mrkdwn", Text: fmt.Sprintf("*Source:*\n%s", rec.Source)},
					{Type: "mrkdwn", Text: fmt.Sprintf("*Author:*\n%s", rec.Author)},
				},
			},
			{
				Type: "section",
				Text: &slackTextObject{Type: "mrkdwn", Text: fmt.Sprintf("> %s", preview)},
			},
		},
	}
}
