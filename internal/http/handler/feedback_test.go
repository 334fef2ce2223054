package handler_test

import (
	"bytes"
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
	"github.com/pulsehq/pulse/internal/service"
	"github.com/pulsehq/pulse/internal/store"
)

var _ = Describe("FeedbackHandler", func() {
	var (
		router   *gin.Engine
		ingest   *mockIngestService
		triage   *mockTriageService
		feedback *mockFeedbackStore
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		ingest = &mockIngestService{}
		triage = &mockTriageService{}
		feedback = &mockFeedbackStore{}

		h := handler.NewFeedbackHandler(ingest, triage, feedback)
		router.POST("/api/feedback/ingest", h.Ingest)
		router.GET("/api/feedback", h.List)
		router.GET("/api/feedback/:id", h.Get)
		router.POST("/api/feedback/:id/actions", h.Action)
		router.POST("/api/feedback/bulk", h.BulkAction)
		router.DELETE("/api/feedback", h.Clear)
	})

	doJSON := func(method, path string, payload any) *httptest.ResponseRecorder {
		var body bytes.Buffer
		if payload != nil {
			Expect(json.NewEncoder(&body).Encode(payload)).To(Succeed())
		}
		req := httptest.NewRequest(method, path, &body)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	Describe("Ingest", func() {
		It("returns 202 with batch counts", func() {
			ingest.ingestFn = func(ctx context.Context, items []service.InboundItem) (*service.IngestResult, error) {
				Expect(items).To(HaveLen(1))
				return &service.IngestResult{Received: 1, Created: 1, Indexed: 1}, nil
			}

			w := doJSON(http.MethodPost, "/api/feedback/ingest", map[string]any{
				"items": []map[string]string{{
					"text":      "dark mode please",
					"source":    "forum",
					"source_id": "f-9",
					"author":    "sam",
				}},
			})

			Expect(w.Code).To(Equal(http.StatusAccepted))
			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["created"]).To(BeEquivalentTo(1))
		})

		It("returns 400 on a malformed body", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/feedback/ingest", bytes.NewBufferString(`{`))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("Get", func() {
		It("returns 404 for a missing record", func() {
			w := doJSON(http.MethodGet, "/api/feedback/123", nil)
			Expect(w.Code).To(Equal(http.StatusNotFound))
		})

		It("returns 400 for a non-numeric id", func() {
			w := doJSON(http.MethodGet, "/api/feedback/abc", nil)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns the record", func() {
			feedback.getByIDFn = func(ctx context.Context, id int64) (*model.FeedbackRecord, error) {
				return &model.FeedbackRecord{ID: id, Category: "Bug", Status: model.StatusNew}, nil
			}
			w := doJSON(http.MethodGet, "/api/feedback/123", nil)
			Expect(w.Code).To(Equal(http.StatusOK))
			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["category"]).To(Equal("Bug"))
		})
	})

	Describe("List", func() {
		It("passes category and status filters through", func() {
			feedback.listFn = func(ctx context.Context, category string, status *model.Status) ([]model.FeedbackRecord, error) {
				Expect(category).To(Equal("Bug"))
				Expect(status).NotTo(BeNil())
				Expect(*status).To(Equal(model.StatusNew))
				return []model.FeedbackRecord{{ID: 1}}, nil
			}

			w := doJSON(http.MethodGet, "/api/feedback?category=Bug&status=new", nil)
			Expect(w.Code).To(Equal(http.StatusOK))
			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["total"]).To(BeEquivalentTo(1))
		})
	})

	Describe("Action", func() {
		It("returns 422 for an unknown action", func() {
			triage.applyFn = func(ctx context.Context, id int64, action string, params service.ActionParams) (*service.Outcome, error) {
				return &service.Outcome{UnknownAction: true}, nil
			}
			w := doJSON(http.MethodPost, "/api/feedback/7/actions", map[string]string{"action": "promote"})
			Expect(w.Code).To(Equal(http.StatusUnprocessableEntity))
		})

		It("returns 404 when the record is missing", func() {
			triage.applyFn = func(ctx context.Context, id int64, action string, params service.ActionParams) (*service.Outcome, error) {
				return nil, store.ErrNotFound
			}
			w := doJSON(http.MethodPost, "/api/feedback/7/actions", map[string]string{"action": "escalate", "team": "engineering"})
			Expect(w.Code).To(Equal(http.StatusNotFound))
		})

		It("returns 400 for an invalid team", func() {
			triage.applyFn = func(ctx context.Context, id int64, action string, params service.ActionParams) (*service.Outcome, error) {
				return nil, service.ErrInvalidTeam
			}
			w := doJSON(http.MethodPost, "/api/feedback/7/actions", map[string]string{"action": "escalate", "team": "ops"})
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns the updated record with the notification outcome", func() {
			team := model.TeamSecurity
			triage.applyFn = func(ctx context.Context, id int64, action string, params service.ActionParams) (*service.Outcome, error) {
				Expect(action).To(Equal("escalate"))
				Expect(params.Team).To(Equal("security"))
				return &service.Outcome{
					Record:       &model.FeedbackRecord{ID: id, Status: model.StatusEscalated, AssignedTeam: &team, UrgencyScore: 10},
					Notification: "delivered",
				}, nil
			}

			w := doJSON(http.MethodPost, "/api/feedback/7/actions", map[string]string{"action": "escalate", "team": "security"})
			Expect(w.Code).To(Equal(http.StatusOK))
			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["notification"]).To(Equal("delivered"))
		})
	})

	Describe("BulkAction", func() {
		It("dispatches bulk_acknowledge", func() {
			triage.bulkAcknowledgeFn = func(ctx context.Context, category string) (int64, error) {
				Expect(category).To(Equal("Bug"))
				return 4, nil
			}
			w := doJSON(http.MethodPost, "/api/feedback/bulk", map[string]string{"action": "bulk_acknowledge", "category": "Bug"})
			Expect(w.Code).To(Equal(http.StatusOK))
			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["affected"]).To(BeEquivalentTo(4))
		})

		It("returns 422 for an unknown bulk action", func() {
			w := doJSON(http.MethodPost, "/api/feedback/bulk", map[string]string{"action": "bulk_promote", "category": "Bug"})
			Expect(w.Code).To(Equal(http.StatusUnprocessableEntity))
		})
	})

	Describe("Clear", func() {
		It("returns 204 on success", func() {
			w := doJSON(http.MethodDelete, "/api/feedback", nil)
			Expect(w.Code).To(Equal(http.StatusNoContent))
		})

		It("returns 500 when the service fails", func() {
			triage.clearFn = func(ctx context.Context) error {
				return errors.New("boom")
			}
			w := doJSON(http.MethodDelete, "/api/feedback", nil)
			Expect(w.Code).To(Equal(http.StatusInternalServerError))
		})
	})
})
