package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timewise-app/support-be/config"
	"github.com/timewise-app/support-be/database"
	"github.com/timewise-app/support-be/service"
	"github.com/timewise-app/support-be/types"
)

type stubCorpus struct {
	docs   []types.Document
	docErr error
}

func (s *stubCorpus) SearchDocuments(ctx context.Context, text, categoryHint, moduleHint string, limit int) ([]types.Document, error) {
	if s.docErr != nil {
		return nil, s.docErr
	}
	return s.docs, nil
}

func (s *stubCorpus) SearchImages(ctx context.Context, intent types.IntentCategory, moduleHint string, limit int) ([]types.ImageAsset, error) {
	return nil, nil
}

func (s *stubCorpus) Stats(ctx context.Context) (*types.CorpusStats, error) {
	return &types.CorpusStats{DocumentCount: int64(len(s.docs))}, nil
}

func (s *stubCorpus) InsertDocuments(ctx context.Context, docs []types.Document) error { return nil }

func (s *stubCorpus) InsertImages(ctx context.Context, images []types.ImageAsset) error { return nil }

func (s *stubCorpus) Close(ctx context.Context) error { return nil }

type stubAI struct {
	answer string
}

func (s *stubAI) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return s.answer, nil
}

func newTestRouter(corpus *stubCorpus) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Corpus:   config.CorpusConfig{CandidateLimit: 20},
		AI:       config.AIConfig{TimeoutSeconds: 5},
		Pipeline: config.DefaultPipelineConfig(),
	}
	support := service.NewSupportService(corpus, &stubAI{answer: "Navigate to Timesheets and click Submit."}, cfg)

	router := gin.New()
	router.POST("/api/v1/ask", NewAskHandler(support).HandleAsk)
	router.GET("/api/v1/documents/search", NewSearchHandler(support).HandleSearch)
	router.GET("/api/v1/stats", NewStatsHandler(support).HandleStats)
	router.GET("/health", NewStatsHandler(support).HandleHealth)
	return router
}

func supportDocs() []types.Document {
	return []types.Document{{
		ID:       "d1",
		Title:    "Submit Your Timesheet",
		Body:     "Navigate to Timesheets and click Submit.",
		Category: types.CategoryTimesheet,
		Keywords: []string{"timesheet", "submit"},
	}}
}

func TestHandleAsk(t *testing.T) {
	router := newTestRouter(&stubCorpus{docs: supportDocs()})

	body, _ := json.Marshal(types.AskRequest{Query: "how do I submit my timesheet", Role: types.RoleEmployee})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ask", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Status bool                  `json:"status"`
		Data   types.SupportResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.True(t, envelope.Status)
	assert.NotEmpty(t, envelope.Data.AnswerText)
	assert.Len(t, envelope.Data.RelevantDocuments, 1)
}

func TestHandleAskInvalidBody(t *testing.T) {
	router := newTestRouter(&stubCorpus{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ask", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleAskCorpusUnavailable(t *testing.T) {
	router := newTestRouter(&stubCorpus{
		docErr: fmt.Errorf("%w: connection refused", database.ErrCorpusUnavailable),
	})

	body, _ := json.Marshal(types.AskRequest{Query: "how do I submit my timesheet"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ask", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHandleSearch(t *testing.T) {
	router := newTestRouter(&stubCorpus{docs: supportDocs()})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/search?q=submit+timesheet&limit=3", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Status bool                   `json:"status"`
		Data   []types.ScoredDocument `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.True(t, envelope.Status)
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, "d1", envelope.Data[0].Item.ID)
}

func TestHandleSearchMissingQuery(t *testing.T) {
	router := newTestRouter(&stubCorpus{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/search", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleStatsAndHealth(t *testing.T) {
	router := newTestRouter(&stubCorpus{docs: supportDocs()})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var health types.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.True(t, health.CorpusConnected)
	assert.True(t, health.GeneratorConfigured)
}
