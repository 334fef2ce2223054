package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pulsehq/pulse/internal/service"
)

type InsightHandler struct {
	insights service.InsightService
}

func NewInsightHandler(insights service.InsightService) *InsightHandler {
	return &InsightHandler{insights: insights}
}

func (h *InsightHandler) Insights(c *gin.Context) {
	ctx := c.Request.Context()

	insights, err := h.insights.Insights(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to compute insights", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute insights"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"insights": insights})
}
