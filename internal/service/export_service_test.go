package service

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campushq/campus-admin-api/internal/models"
	"github.com/campushq/campus-admin-api/pkg/storage"
)

type fakeAnalyticsSource struct {
	records []models.SessionAnalyticsRecord
}

func (f *fakeAnalyticsSource) AnalyticsByDate(_ context.Context, _ string) ([]models.SessionAnalyticsRecord, bool, error) {
	return f.records, false, nil
}

type fakeEvaluationSource struct {
	rows []models.EvaluationReportRow
}

func (f *fakeEvaluationSource) TermReport(_ context.Context, _ string) ([]models.EvaluationReportRow, error) {
	return f.rows, nil
}

func exportFixture(t *testing.T) *ExportService {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)

	analytics := &fakeAnalyticsSource{records: []models.SessionAnalyticsRecord{
		{
			SessionID:            "sess-1",
			BatchID:              "batch-1",
			TotalRegistered:      10,
			PresentCount:         8,
			AttendanceRate:       "80.0%",
			ResponseRate:         "75.0%",
			AverageRating:        "4.33",
			LowRatingsPercentage: "16.7%",
			QuizPercentage:       "70.00%",
			Summary:              "A strong session.",
		},
	}}
	evaluations := &fakeEvaluationSource{rows: []models.EvaluationReportRow{
		{StudentID: "stu-1", StudentName: "Asha Rao", CriterionCount: 3, TotalScore: 24, TotalMax: 30, Percentage: 80},
	}}
	return NewExportService(analytics, evaluations, store, signer, zap.NewNop())
}

func TestExportServiceAnalyticsCSV(t *testing.T) {
	svc := exportFixture(t)

	result, err := svc.ExportAnalytics(context.Background(), "2026-03-10", FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, result.Format)
	assert.Equal(t, 1, result.RowCount)
	assert.NotEmpty(t, result.Token)

	file, filename, err := svc.Open(result.Token)
	require.NoError(t, err)
	defer file.Close()
	assert.Equal(t, result.Filename, filename)

	content, err := io.ReadAll(file)
	require.NoError(t, err)
	text := string(content)
	assert.True(t, strings.HasPrefix(text, "session_id,"))
	assert.Contains(t, text, "80.0%")
	assert.Contains(t, text, "A strong session.")
}

func TestExportServiceEvaluationsPDF(t *testing.T) {
	svc := exportFixture(t)

	result, err := svc.ExportEvaluations(context.Background(), "2026-spring", FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, result.Format)

	file, _, err := svc.Open(result.Token)
	require.NoError(t, err)
	defer file.Close()

	header := make([]byte, 4)
	_, err = file.Read(header)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(header))
}

func TestExportServiceUnsupportedFormat(t *testing.T) {
	svc := exportFixture(t)

	_, err := svc.ExportAnalytics(context.Background(), "2026-03-10", "xlsx")
	assert.Error(t, err)
}

func TestExportServiceEmptyDataset(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	svc := NewExportService(&fakeAnalyticsSource{}, &fakeEvaluationSource{}, store,
		storage.NewSignedURLSigner("test-secret", time.Hour), zap.NewNop())

	_, err = svc.ExportAnalytics(context.Background(), "2026-03-10", FormatCSV)
	assert.Error(t, err)
}

func TestExportServiceOpenRejectsTamperedToken(t *testing.T) {
	svc := exportFixture(t)

	result, err := svc.ExportAnalytics(context.Background(), "2026-03-10", FormatCSV)
	require.NoError(t, err)

	_, _, err = svc.Open(result.Token + "x")
	assert.Error(t, err)
}
