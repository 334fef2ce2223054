package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/pulsehq/pulse/internal/http/handler"
	"github.com/pulsehq/pulse/internal/model"
	"github.com/pulsehq/pulse/internal/service"
)

var _ = Describe("SearchHandler", func() {
	var (
		router *gin.Engine
		search *mockSearchService
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		search = &mockSearchService{}
		h := handler.NewSearchHandler(search)
		router.GET("/api/search", h.Search)
	})

	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	It("returns 400 when q is missing", func() {
		search.searchFn = func(ctx context.Context, query string) (*service.SearchResult, error) {
			return nil, service.ErrEmptyQuery
		}
		Expect(get("/api/search").Code).To(Equal(http.StatusBadRequest))
	})

	It("returns ranked matches", func() {
		search.searchFn = func(ctx context.Context, query string) (*service.SearchResult, error) {
			Expect(query).To(Equal("login crash"))
			return &service.SearchResult{
				Matches: []model.SearchMatch{
					{Record: model.FeedbackRecord{ID: 1, Category: "Bug"}, Similarity: 91},
				},
			}, nil
		}

		w := get("/api/search?q=login%20crash")
		Expect(w.Code).To(Equal(http.StatusOK))

		var resp map[string]any
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		matches := resp["matches"].([]any)
		Expect(matches).To(HaveLen(1))
		first := matches[0].(map[string]any)
		Expect(first["similarity"]).To(BeEquivalentTo(91))
	})

	It("passes the no-match message through", func() {
		search.searchFn = func(ctx context.Context, query string) (*service.SearchResult, error) {
			return &service.SearchResult{
				Matches: []model.SearchMatch{},
				Message: "no feedback matched above the 0.50 similarity threshold",
			}, nil
		}

		w := get("/api/search?q=anything")
		Expect(w.Code).To(Equal(http.StatusOK))

		var resp map[string]any
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp["message"]).To(ContainSubstring("0.50"))
	})
})
