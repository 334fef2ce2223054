package router

import (
	"github.com/gin-gonic/gin"

	"github.com/pulsehq/pulse/internal/http/handler"
	"github.com/pulsehq/pulse/internal/service"
	"github.com/pulsehq/pulse/internal/store"
)

func SetupRoutes(router *gin.Engine, services *service.Services, stores *store.Stores) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	feedbackHandler := handler.NewFeedbackHandler(services.Ingest(), services.Triage(), stores.Feedback)
	searchHandler := handler.NewSearchHandler(services.Search())
	insightHandler := handler.NewInsightHandler(services.Insights())

	api := router.Group("/api")
	{
		feedback := api.Group("/feedback")
		{
			feedback.POST("/ingest", feedbackHandler.Ingest)
			feedback.GET("", feedbackHandler.List)
			feedback.GET("/:id", feedbackHandler.Get)
			feedback.POST("/:id/actions", feedbackHandler.Action)
			feedback.POST("/bulk", feedbackHandler.BulkAction)
			feedback.DELETE("", feedbackHandler.Clear)
		}

		api.GET("/search", searchHandler.Search)
		api.GET("/insights", insightHandler.Insights)
	}
}
