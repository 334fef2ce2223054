package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pulsehq/pulse/internal/http/dto"
	"github.com/pulsehq/pulse/internal/service"
)

type SearchHandler struct {
	search service.SearchService
}

func NewSearchHandler(search service.SearchService) *SearchHandler {
	return &SearchHandler{search: search}
}

func (h *SearchHandler) Search(c *gin.Context) {
	ctx := c.Request.Context()

	result, err := h.search.Search(ctx, c.Query("q"))
	if err != nil {
		if errors.Is(err, service.ErrEmptyQuery) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter q is required"})
			return
		}
		slog.ErrorContext(ctx, "search failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}

	matches := make([]dto.SearchMatchResponse, len(result.Matches))
	for i, m := range result.Matches {
		matches[i] = dto.SearchMatchResponse{
			Feedback:   dto.FromFeedback(&m.Record),
			Similarity: m.Similarity,
		}
	}
	c.JSON(http.StatusOK, dto.SearchResponse{Matches: matches, Message: result.Message})
}
