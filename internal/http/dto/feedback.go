package dto

import (
	"time"

	"github.com/pulsehq/pulse/internal/model"
	"github.com/pulsehq/pulse/internal/service"
)

type IngestItem struct {
	Text     string `json:"text" binding:"required"`
	Source   string `json:"source" binding:"required"`
	SourceID string `json:"source_id" binding:"required"`
	Author   string `json:"author"`
}

type IngestRequest struct {
	Items []IngestItem `json:"items" binding:"required"`
}

type IngestResponse struct {
	Received    int `json:"received"`
	Created     int `json:"created"`
	Skipped     int `json:"skipped"`
	Invalid     int `json:"invalid"`
	Indexed     int `json:"indexed"`
	IndexFailed int `json:"index_failed"`
}

type ActionRequest struct {
	Action string  `json:"action" binding:"required"`
	Team   string  `json:"team,omitempty"`
	Notes  *string `json:"notes,omitempty"`
}

type BulkActionRequest struct {
	Action   string `json:"action" binding:"required"`
	Category string `json:"category" binding:"required"`
}

type BulkActionResponse struct {
	Action   string `json:"action"`
	Category string `json:"category"`
	Affected int64  `json:"affected"`
}

type FeedbackResponse struct {
	ID           int64     `json:"id"`
	RawText      string    `json:"raw_text"`
	Category     string    `json:"category"`
	Sentiment    string    `json:"sentiment"`
	UrgencyScore int       `json:"urgency_score"`
	Source       string    `json:"source"`
	SourceID     string    `json:"source_id"`
	Author       string    `json:"author"`
	Status       string    `json:"status"`
	AssignedTeam *string   `json:"assigned_team,omitempty"`
	Notes        *string   `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type ActionResponse struct {
	Feedback     FeedbackResponse `json:"feedback"`
	Notification string           `json:"notification,omitempty"`
}

type ListResponse struct {
	Items []FeedbackResponse `json:"items"`
	Total int                `json:"total"`
}

type SearchMatchResponse struct {
	Feedback   FeedbackResponse `json:"feedback"`
	Similarity int              `json:"similarity"`
}

type SearchResponse struct {
	Matches []SearchMatchResponse `json:"matches"`
	Message string                `json:"message,omitempty"`
}

func FromFeedback(rec *model.FeedbackRecord) FeedbackResponse {
	resp := FeedbackResponse{
		ID:           rec.ID,
		RawText:      rec.RawText,
		Category:     rec.Category,
		Sentiment:    string(rec.Sentiment),
		UrgencyScore: rec.UrgencyScore,
		Source:       string(rec.Source),
		SourceID:     rec.SourceID,
		Author:       rec.Author,
		Status:       string(rec.Status),
		Notes:        rec.Notes,
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
	}
	if rec.AssignedTeam != nil {
		team := string(*rec.AssignedTeam)
		resp.AssignedTeam = &team
	}
	return resp
}

func FromIngestResult(result *service.IngestResult) IngestResponse {
	return IngestResponse{
		Received:    result.Received,
		Created:     result.Created,
		Skipped:     result.Skipped,
		Invalid:     result.Invalid,
		Indexed:     result.Indexed,
		IndexFailed: result.IndexFailed,
	}
}
