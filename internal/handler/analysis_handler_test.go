package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campushq/campus-admin-api/internal/models"
	"github.com/campushq/campus-admin-api/internal/service"
	"github.com/campushq/campus-admin-api/pkg/config"
)

type stubAnalysisRepo struct {
	sections []string
	sessions []models.Session
	records  []models.SessionAnalyticsRecord
}

func (s *stubAnalysisRepo) SectionIDs(context.Context, string) ([]string, error) {
	return s.sections, nil
}

func (s *stubAnalysisRepo) SessionsForDate(context.Context, []string, time.Time, time.Time, int) ([]models.Session, error) {
	return s.sessions, nil
}

func (s *stubAnalysisRepo) AttendanceForSessions(context.Context, []string, int) ([]models.AttendanceRecord, error) {
	return nil, nil
}

func (s *stubAnalysisRepo) FeedbackForSessions(context.Context, []string, int) ([]models.FeedbackResponse, error) {
	return nil, nil
}

func (s *stubAnalysisRepo) QuizScoresForSessions(context.Context, []string, int) ([]models.QuizScore, error) {
	return nil, nil
}

func (s *stubAnalysisRepo) UpsertRecords(_ context.Context, records []models.SessionAnalyticsRecord) error {
	s.records = records
	return nil
}

func (s *stubAnalysisRepo) RecordsByDate(context.Context, time.Time) ([]models.SessionAnalyticsRecord, error) {
	return s.records, nil
}

type stubNarrator struct{}

func (stubNarrator) Summarize(_ context.Context, sessions []models.Session, _ map[string]service.SessionStatistics) map[string]string {
	summaries := make(map[string]string, len(sessions))
	for _, session := range sessions {
		summaries[session.ID] = "Summary."
	}
	return summaries
}

func analysisHandlerFixture(repo *stubAnalysisRepo) *AnalysisHandler {
	cfg := config.AnalysisConfig{Timezone: "UTC", RatingQuestion: "q-rating"}
	analysis := service.NewAnalysisService(repo, stubNarrator{}, nil, nil, nil, cfg, zap.NewNop())
	return NewAnalysisHandler(analysis, nil)
}

func TestAnalysisHandlerRun(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &stubAnalysisRepo{
		sections: []string{"sec-1"},
		sessions: []models.Session{{ID: "sess-1", BatchID: "batch-1"}},
	}
	handler := analysisHandlerFixture(repo)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Params = gin.Params{{Key: "batchId", Value: "batch-1"}}
	c.Request = httptest.NewRequest(http.MethodPost, "/analysis/feedback/batch-1",
		strings.NewReader(`{"date":"2026-03-10"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Run(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, repo.records, 1)
	assert.Equal(t, "sess-1", repo.records[0].SessionID)

	var envelope struct {
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, float64(1), envelope.Meta["sessions_analyzed"])
}

func TestAnalysisHandlerRunRejectsBadDate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := analysisHandlerFixture(&stubAnalysisRepo{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Params = gin.Params{{Key: "batchId", Value: "batch-1"}}
	c.Request = httptest.NewRequest(http.MethodPost, "/analysis/feedback/batch-1",
		strings.NewReader(`{"date":"10/03/2026"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Run(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalysisHandlerRunNoSections(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := analysisHandlerFixture(&stubAnalysisRepo{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Params = gin.Params{{Key: "batchId", Value: "batch-unknown"}}
	c.Request = httptest.NewRequest(http.MethodPost, "/analysis/feedback/batch-unknown",
		strings.NewReader(`{"date":"2026-03-10"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Run(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAnalysisHandlerAnalyticsRequiresDate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := analysisHandlerFixture(&stubAnalysisRepo{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/analysis/analytics", nil)

	handler.Analytics(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalysisHandlerAnalytics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &stubAnalysisRepo{
		records: []models.SessionAnalyticsRecord{{SessionID: "sess-1", AttendanceRate: "80.0%"}},
	}
	handler := analysisHandlerFixture(repo)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/analysis/analytics?date=2026-03-10", nil)

	handler.Analytics(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "80.0%")
}
