package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/pulsehq/pulse/internal/http/handler"
	"github.com/pulsehq/pulse/internal/model"
)

var _ = Describe("InsightHandler", func() {
	var (
		router   *gin.Engine
		insights *mockInsightService
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		insights = &mockInsightService{}
		h := handler.NewInsightHandler(insights)
		router.GET("/api/insights", h.Insights)
	})

	It("returns the rollups", func() {
		insights.insightsFn = func(ctx context.Context) ([]model.CategoryInsight, error) {
			return []model.CategoryInsight{
				{Category: "Bug", Total: 5, NewCount: 3, AvgUrgency: 7.2, Sources: []string{"discord", "github"}},
			}, nil
		}

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/insights", nil))
		Expect(w.Code).To(Equal(http.StatusOK))

		var resp map[string]any
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		list := resp["insights"].([]any)
		Expect(list).To(HaveLen(1))
		first := list[0].(map[string]any)
		Expect(first["category"]).To(Equal("Bug"))
		Expect(first["avg_urgency"]).To(BeEquivalentTo(7.2))
	})

	It("returns 500 when aggregation fails", func() {
		insights.insightsFn = func(ctx context.Context) ([]model.CategoryInsight, error) {
			return nil, errors.New("boom")
		}

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/insights", nil))
		Expect(w.Code).To(Equal(http.StatusInternalServerError))
	})
})
