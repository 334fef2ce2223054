package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pulsehq/pulse/internal/http/dto"
	"github.com/pulsehq/pulse/internal/model"
	"github.com/pulsehq/pulse/internal/service"
	"github.com/pulsehq/pulse/internal/store"
)

type FeedbackHandler struct {
	ingest   service.IngestService
	triage   service.TriageService
	feedback store.FeedbackStore
}

func NewFeedbackHandler(ingest service.IngestService, triage service.TriageService, feedback store.FeedbackStore) *FeedbackHandler {
	return &FeedbackHandler{
		ingest:   ingest,
		triage:   triage,
		feedback: feedback,
	}
}

func (h *FeedbackHandler) Ingest(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid ingest request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items := make([]service.InboundItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = service.InboundItem{
			Text:     item.Text,
			Source:   item.Source,
			SourceID: item.SourceID,
			Author:   item.Author,
		}
	}

	result, err := h.ingest.Ingest(ctx, items)
	if err != nil {
		slog.ErrorContext(ctx, "failed to ingest feedback", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to ingest feedback"})
		return
	}

	c.JSON(http.StatusAccepted, dto.FromIngestResult(result))
}

func (h *FeedbackHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	category := c.Query("category")
	var status *model.Status
	if raw := c.Query("status"); raw != "" {
		s := model.Status(raw)
		status = &s
	}

	records, err := h.feedback.List(ctx, category, status)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list feedback", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list feedback"})
		return
	}

	items := make([]dto.FeedbackResponse, len(records))
	for i := range records {
		items[i] = dto.FromFeedback(&records[i])
	}
	c.JSON(http.StatusOK, dto.ListResponse{Items: items, Total: len(items)})
}

func (h *FeedbackHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid feedback id"})
		return
	}

	rec, err := h.feedback.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "feedback not found"})
			return
		}
		slog.ErrorContext(ctx, "failed to fetch feedback", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch feedback"})
		return
	}

	c.JSON(http.StatusOK, dto.FromFeedback(rec))
}

func (h *FeedbackHandler) Action(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid feedback id"})
		return
	}

	var req dto.ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid action request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outcome, err := h.triage.Apply(ctx, id, req.Action, service.ActionParams{
		Team:  req.Team,
		Notes: req.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "feedback not found"})
		case errors.Is(err, service.ErrInvalidTeam), errors.Is(err, service.ErrMissingNotes):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			slog.ErrorContext(ctx, "failed to apply triage action", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to apply action"})
		}
		return
	}

	if outcome.UnknownAction {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  "unknown action",
			"action": req.Action,
		})
		return
	}

	resp := dto.ActionResponse{Feedback: dto.FromFeedback(outcome.Record)}
	if outcome.Notification != "" {
		resp.Notification = string(outcome.Notification)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *FeedbackHandler) BulkAction(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.BulkActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid bulk action request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var (
		affected int64
		err      error
	)
	switch req.Action {
	case "bulk_acknowledge":
		affected, err = h.triage.BulkAcknowledge(ctx, req.Category)
	case "bulk_resolve":
		affected, err = h.triage.BulkResolve(ctx, req.Category)
	default:
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  "unknown action",
			"action": req.Action,
		})
		return
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to apply bulk action", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to apply bulk action"})
		return
	}

	c.JSON(http.StatusOK, dto.BulkActionResponse{
		Action:   req.Action,
		Category: req.Category,
		Affected: affected,
	})
}

func (h *FeedbackHandler) Clear(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.triage.Clear(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to clear feedback", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear feedback"})
		return
	}
	c.Status(http.StatusNoContent)
}
