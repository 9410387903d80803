package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campushq/campus-admin-api/internal/models"
	"github.com/campushq/campus-admin-api/pkg/config"
	appErrors "github.com/campushq/campus-admin-api/pkg/errors"
)

type fakeAnalysisRepo struct {
	sections   []string
	sessions   []models.Session
	attendance []models.AttendanceRecord
	feedback   []models.FeedbackResponse
	quizzes    []models.QuizScore
	records    []models.SessionAnalyticsRecord

	upserted    []models.SessionAnalyticsRecord
	upsertCalls int
	upsertErr   error
	fetchErr    error

	windowFrom time.Time
	windowTo   time.Time
}

func (f *fakeAnalysisRepo) SectionIDs(_ context.Context, _ string) ([]string, error) {
	return f.sections, nil
}

func (f *fakeAnalysisRepo) SessionsForDate(_ context.Context, _ []string, from, to time.Time, _ int) ([]models.Session, error) {
	f.windowFrom = from
	f.windowTo = to
	return f.sessions, nil
}

func (f *fakeAnalysisRepo) AttendanceForSessions(_ context.Context, _ []string, _ int) ([]models.AttendanceRecord, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.attendance, nil
}

func (f *fakeAnalysisRepo) FeedbackForSessions(_ context.Context, _ []string, _ int) ([]models.FeedbackResponse, error) {
	return f.feedback, nil
}

func (f *fakeAnalysisRepo) QuizScoresForSessions(_ context.Context, _ []string, _ int) ([]models.QuizScore, error) {
	return f.quizzes, nil
}

func (f *fakeAnalysisRepo) UpsertRecords(_ context.Context, records []models.SessionAnalyticsRecord) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upsertCalls++
	f.upserted = records
	return nil
}

func (f *fakeAnalysisRepo) RecordsByDate(_ context.Context, _ time.Time) ([]models.SessionAnalyticsRecord, error) {
	return f.records, nil
}

type fakeNarrator struct{}

func (fakeNarrator) Summarize(_ context.Context, sessions []models.Session, _ map[string]SessionStatistics) map[string]string {
	summaries := make(map[string]string, len(sessions))
	for _, session := range sessions {
		summaries[session.ID] = "A productive session."
	}
	return summaries
}

type recordingAppender struct {
	rows [][]interface{}
	err  error
}

func (a *recordingAppender) Append(_ context.Context, rows [][]interface{}) error {
	if a.err != nil {
		return a.err
	}
	a.rows = append(a.rows, rows...)
	return nil
}

func analysisTestConfig() config.AnalysisConfig {
	return config.AnalysisConfig{
		Enabled:        true,
		SessionLimit:   1000,
		RowLimit:       10000,
		Timezone:       "UTC",
		RatingQuestion: "q-rating",
	}
}

func pipelineFixture() *fakeAnalysisRepo {
	repo := &fakeAnalysisRepo{
		sections: []string{"sec-1"},
		sessions: []models.Session{
			{ID: "sess-1", BatchID: "batch-1", Topic: "Databases", StartsAt: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)},
			{ID: "sess-2", BatchID: "batch-1", Topic: "Networks", StartsAt: time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC)},
		},
	}
	for i := 0; i < 10; i++ {
		repo.attendance = append(repo.attendance, models.AttendanceRecord{
			SessionID: "sess-1",
			StudentID: string(rune('a' + i)),
			Present:   i < 8,
		})
	}
	repo.feedback = []models.FeedbackResponse{
		{SessionID: "sess-1", StudentID: "a", QuestionID: "q-rating", Answer: "5"},
		{SessionID: "sess-1", StudentID: "b", QuestionID: "q-rating", Answer: "3"},
	}
	repo.quizzes = []models.QuizScore{
		{SessionID: "sess-1", StudentID: "a", Score: 100, MaxScore: 100},
		{SessionID: "sess-1", StudentID: "b", Score: 80, MaxScore: 100},
		{SessionID: "sess-1", StudentID: "c", Score: 60, MaxScore: 100},
		{SessionID: "sess-1", StudentID: "d", Score: 40, MaxScore: 100},
	}
	return repo
}

func TestAnalysisServiceRunAnalysis(t *testing.T) {
	repo := pipelineFixture()
	sheet := &recordingAppender{}
	svc := NewAnalysisService(repo, fakeNarrator{}, sheet, nil, nil, analysisTestConfig(), zap.NewNop())

	records, err := svc.RunAnalysis(context.Background(), "batch-1", "2026-03-10")
	require.NoError(t, err)
	require.Len(t, records, 2)

	byID := make(map[string]models.SessionAnalyticsRecord)
	for _, record := range records {
		byID[record.SessionID] = record
	}

	first := byID["sess-1"]
	assert.Equal(t, 10, first.TotalRegistered)
	assert.Equal(t, "80.0%", first.AttendanceRate)
	assert.Equal(t, "25.0%", first.ResponseRate)
	assert.Equal(t, "4.00", first.AverageRating)
	assert.Equal(t, "50.0%", first.LowRatingsPercentage)
	require.NotNil(t, first.QuizAverage)
	assert.Equal(t, 70.0, *first.QuizAverage)
	assert.Equal(t, "70.00%", first.QuizPercentage)
	assert.Equal(t, "A productive session.", first.Summary)

	// sess-2 had no source rows at all, it still produces a record.
	second := byID["sess-2"]
	assert.Equal(t, "N/A", second.AttendanceRate)
	assert.Equal(t, "N/A", second.AverageRating)
	assert.Nil(t, second.QuizAverage)

	assert.Equal(t, 1, repo.upsertCalls)
	assert.Len(t, repo.upserted, 2)
	assert.Len(t, sheet.rows, 2)
	assert.Equal(t, "2026-03-10", sheet.rows[0][0])
}

func TestAnalysisServiceNoSections(t *testing.T) {
	repo := &fakeAnalysisRepo{}
	svc := NewAnalysisService(repo, fakeNarrator{}, nil, nil, nil, analysisTestConfig(), zap.NewNop())

	_, err := svc.RunAnalysis(context.Background(), "batch-1", "2026-03-10")
	assert.ErrorIs(t, err, appErrors.ErrNoSections)
}

func TestAnalysisServiceNoSessions(t *testing.T) {
	repo := &fakeAnalysisRepo{sections: []string{"sec-1"}}
	svc := NewAnalysisService(repo, fakeNarrator{}, nil, nil, nil, analysisTestConfig(), zap.NewNop())

	_, err := svc.RunAnalysis(context.Background(), "batch-1", "2026-03-10")
	assert.ErrorIs(t, err, appErrors.ErrNoSessions)
}

func TestAnalysisServiceInvalidDate(t *testing.T) {
	svc := NewAnalysisService(&fakeAnalysisRepo{}, fakeNarrator{}, nil, nil, nil, analysisTestConfig(), zap.NewNop())

	_, err := svc.RunAnalysis(context.Background(), "batch-1", "10-03-2026")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestAnalysisServiceDayWindowSpansDSTTransition(t *testing.T) {
	// 2026-03-08 is the US spring-forward date: the local day is 23 hours
	// long, so adding 24h to midnight would leak into the next day.
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	repo := pipelineFixture()
	cfg := analysisTestConfig()
	cfg.Timezone = "America/New_York"
	svc := NewAnalysisService(repo, fakeNarrator{}, nil, nil, nil, cfg, zap.NewNop())

	_, err = svc.RunAnalysis(context.Background(), "batch-1", "2026-03-08")
	require.NoError(t, err)

	assert.True(t, repo.windowFrom.Equal(time.Date(2026, 3, 8, 0, 0, 0, 0, loc)))
	assert.True(t, repo.windowTo.Equal(time.Date(2026, 3, 9, 0, 0, 0, 0, loc)))
	assert.Equal(t, 23*time.Hour, repo.windowTo.Sub(repo.windowFrom))
}

func TestAnalysisServiceFetchFailureAborts(t *testing.T) {
	repo := pipelineFixture()
	repo.fetchErr = errors.New("connection reset")
	svc := NewAnalysisService(repo, fakeNarrator{}, nil, nil, nil, analysisTestConfig(), zap.NewNop())

	_, err := svc.RunAnalysis(context.Background(), "batch-1", "2026-03-10")
	require.Error(t, err)
	assert.Zero(t, repo.upsertCalls)
}

func TestAnalysisServiceSheetFailureDoesNotAbort(t *testing.T) {
	repo := pipelineFixture()
	sheet := &recordingAppender{err: errors.New("quota exceeded")}
	svc := NewAnalysisService(repo, fakeNarrator{}, sheet, nil, nil, analysisTestConfig(), zap.NewNop())

	records, err := svc.RunAnalysis(context.Background(), "batch-1", "2026-03-10")
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, 1, repo.upsertCalls)
}

func TestAnalysisServiceRerunProducesIdenticalRecords(t *testing.T) {
	repo := pipelineFixture()
	svc := NewAnalysisService(repo, fakeNarrator{}, nil, nil, nil, analysisTestConfig(), zap.NewNop())

	first, err := svc.RunAnalysis(context.Background(), "batch-1", "2026-03-10")
	require.NoError(t, err)
	second, err := svc.RunAnalysis(context.Background(), "batch-1", "2026-03-10")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 2, repo.upsertCalls)
}

func TestAnalysisServiceAnalyticsByDate(t *testing.T) {
	repo := &fakeAnalysisRepo{
		records: []models.SessionAnalyticsRecord{{SessionID: "sess-1", AttendanceRate: "80.0%"}},
	}
	svc := NewAnalysisService(repo, fakeNarrator{}, nil, nil, nil, analysisTestConfig(), zap.NewNop())

	records, cacheHit, err := svc.AnalyticsByDate(context.Background(), "2026-03-10")
	require.NoError(t, err)
	assert.False(t, cacheHit)
	require.Len(t, records, 1)
	assert.Equal(t, "sess-1", records[0].SessionID)
}
