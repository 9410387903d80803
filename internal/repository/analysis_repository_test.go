package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/campushq/campus-admin-api/internal/models"
)

func newAnalysisRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestAnalysisRepositorySectionIDs(t *testing.T) {
	db, mock, cleanup := newAnalysisRepoMock(t)
	defer cleanup()
	repo := NewAnalysisRepository(db)

	rows := sqlmock.NewRows([]string{"id"}).AddRow("sec-1").AddRow("sec-2")
	mock.ExpectQuery("SELECT id FROM sections WHERE batch_id").
		WithArgs("batch-1").
		WillReturnRows(rows)

	ids, err := repo.SectionIDs(context.Background(), "batch-1")
	require.NoError(t, err)
	require.Equal(t, []string{"sec-1", "sec-2"}, ids)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalysisRepositorySessionsForDate(t *testing.T) {
	db, mock, cleanup := newAnalysisRepoMock(t)
	defer cleanup()
	repo := NewAnalysisRepository(db)

	from := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)
	now := time.Now()

	rows := sqlmock.NewRows([]string{"id", "starts_at", "faculty_id", "course_id", "section_id", "batch_id", "topic", "venue", "created_at", "updated_at"}).
		AddRow("sess-1", from.Add(9*time.Hour), "fac-1", "course-1", "sec-1", "batch-1", "Databases", "Hall A", now, now)
	mock.ExpectQuery("SELECT id, starts_at, faculty_id, course_id, section_id, batch_id, topic, venue, created_at, updated_at\\s+FROM sessions\\s+WHERE section_id IN").
		WithArgs("sec-1", "sec-2", from, to, 1000).
		WillReturnRows(rows)

	sessions, err := repo.SessionsForDate(context.Background(), []string{"sec-1", "sec-2"}, from, to, 0)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.Equal(t, "sess-1", sessions[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalysisRepositorySessionsForDateEmptySections(t *testing.T) {
	db, _, cleanup := newAnalysisRepoMock(t)
	defer cleanup()
	repo := NewAnalysisRepository(db)

	sessions, err := repo.SessionsForDate(context.Background(), nil, time.Now(), time.Now(), 0)
	require.NoError(t, err)
	require.Nil(t, sessions)
}

func TestAnalysisRepositoryUpsertRecords(t *testing.T) {
	db, mock, cleanup := newAnalysisRepoMock(t)
	defer cleanup()
	repo := NewAnalysisRepository(db)

	avg := 70.0
	above := 1
	record := models.SessionAnalyticsRecord{
		SessionID:            "sess-1",
		AnalysisDate:         time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		BatchID:              "batch-1",
		TotalRegistered:      10,
		PresentCount:         8,
		AttendanceRate:       "80.0%",
		RespondentCount:      6,
		ResponseRate:         "75.0%",
		RatingCount:          6,
		AverageRating:        "4.33",
		LowRatingsPercentage: "16.7%",
		QuizAverage:          &avg,
		QuizPercentage:       "70.00%",
		QuizAbove90Count:     &above,
		Summary:              "A strong session.",
	}

	mock.ExpectExec("INSERT INTO session_analytics").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpsertRecords(context.Background(), []models.SessionAnalyticsRecord{record})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

// Re-running the upsert for the same (session, date) issues the same
// conflict-update statement rather than failing on the unique constraint.
func TestAnalysisRepositoryUpsertRecordsIdempotent(t *testing.T) {
	db, mock, cleanup := newAnalysisRepoMock(t)
	defer cleanup()
	repo := NewAnalysisRepository(db)

	record := models.SessionAnalyticsRecord{
		SessionID:    "sess-1",
		AnalysisDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		BatchID:      "batch-1",
	}

	mock.ExpectExec("ON CONFLICT \\(session_id, analysis_date\\)").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("ON CONFLICT \\(session_id, analysis_date\\)").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpsertRecords(context.Background(), []models.SessionAnalyticsRecord{record}))
	require.NoError(t, repo.UpsertRecords(context.Background(), []models.SessionAnalyticsRecord{record}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalysisRepositoryRecordsByDate(t *testing.T) {
	db, mock, cleanup := newAnalysisRepoMock(t)
	defer cleanup()
	repo := NewAnalysisRepository(db)

	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "session_id", "analysis_date", "batch_id",
		"total_registered", "present_count", "attendance_rate",
		"respondent_count", "response_rate",
		"rating_count", "average_rating", "low_ratings_percentage",
		"quiz_average", "quiz_std_dev", "quiz_min", "quiz_max", "quiz_percentage",
		"quiz_above_90_count", "quiz_below_40_count",
		"summary", "created_at", "updated_at",
	}).AddRow(
		"rec-1", "sess-1", date, "batch-1",
		10, 8, "80.0%",
		6, "75.0%",
		6, "4.33", "16.7%",
		nil, nil, nil, nil, "N/A",
		nil, nil,
		"A strong session.", now, now,
	)
	mock.ExpectQuery("FROM session_analytics sa\\s+JOIN sessions s ON").
		WithArgs(date).
		WillReturnRows(rows)

	records, err := repo.RecordsByDate(context.Background(), date)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "80.0%", records[0].AttendanceRate)
	require.Nil(t, records[0].QuizAverage)
	require.NoError(t, mock.ExpectationsWereMet())
}
