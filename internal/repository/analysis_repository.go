package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campushq/campus-admin-api/internal/models"
)

// AnalysisRepository issues the bounded source-row queries and persists the
// derived analytics records.
type AnalysisRepository struct {
	db *sqlx.DB
}

// NewAnalysisRepository instantiates the repository.
func NewAnalysisRepository(db *sqlx.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// SectionIDs returns the section identifiers belonging to a batch.
func (r *AnalysisRepository) SectionIDs(ctx context.Context, batchID string) ([]string, error) {
	var ids []string
	query := "SELECT id FROM sections WHERE batch_id = $1"
	if err := r.db.SelectContext(ctx, &ids, query, batchID); err != nil {
		return nil, fmt.Errorf("query batch sections: %w", err)
	}
	return ids, nil
}

// SessionsForDate returns the batch's sessions whose starts_at falls within
// [from, to). The result set is capped at limit rows.
func (r *AnalysisRepository) SessionsForDate(ctx context.Context, sectionIDs []string, from, to time.Time, limit int) ([]models.Session, error) {
	if len(sectionIDs) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = 1000
	}
	query, args, err := sqlx.In(`SELECT id, starts_at, faculty_id, course_id, section_id, batch_id, topic, venue, created_at, updated_at
        FROM sessions
        WHERE section_id IN (?) AND starts_at >= ? AND starts_at < ?
        ORDER BY starts_at ASC
        LIMIT ?`, sectionIDs, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("build sessions query: %w", err)
	}
	var sessions []models.Session
	if err := r.db.SelectContext(ctx, &sessions, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("query sessions for date: %w", err)
	}
	return sessions, nil
}

// AttendanceForSessions returns attendance rows for the session set.
func (r *AnalysisRepository) AttendanceForSessions(ctx context.Context, sessionIDs []string, limit int) ([]models.AttendanceRecord, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10000
	}
	query, args, err := sqlx.In(`SELECT id, session_id, student_id, present, created_at, updated_at
        FROM attendance_records WHERE session_id IN (?) LIMIT ?`, sessionIDs, limit)
	if err != nil {
		return nil, fmt.Errorf("build attendance query: %w", err)
	}
	var rows []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("query attendance rows: %w", err)
	}
	return rows, nil
}

// FeedbackForSessions returns feedback rows for the session set.
func (r *AnalysisRepository) FeedbackForSessions(ctx context.Context, sessionIDs []string, limit int) ([]models.FeedbackResponse, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10000
	}
	query, args, err := sqlx.In(`SELECT id, session_id, student_id, question_id, answer, created_at
        FROM feedback_responses WHERE session_id IN (?) LIMIT ?`, sessionIDs, limit)
	if err != nil {
		return nil, fmt.Errorf("build feedback query: %w", err)
	}
	var rows []models.FeedbackResponse
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("query feedback rows: %w", err)
	}
	return rows, nil
}

// QuizScoresForSessions returns quiz rows for the session set.
func (r *AnalysisRepository) QuizScoresForSessions(ctx context.Context, sessionIDs []string, limit int) ([]models.QuizScore, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10000
	}
	query, args, err := sqlx.In(`SELECT id, session_id, student_id, score, max_score, created_at, updated_at
        FROM quiz_scores WHERE session_id IN (?) LIMIT ?`, sessionIDs, limit)
	if err != nil {
		return nil, fmt.Errorf("build quiz query: %w", err)
	}
	var rows []models.QuizScore
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("query quiz rows: %w", err)
	}
	return rows, nil
}

const upsertAnalyticsQuery = `INSERT INTO session_analytics (
    id, session_id, analysis_date, batch_id,
    total_registered, present_count, attendance_rate,
    respondent_count, response_rate,
    rating_count, average_rating, low_ratings_percentage,
    quiz_average, quiz_std_dev, quiz_min, quiz_max, quiz_percentage,
    quiz_above_90_count, quiz_below_40_count,
    summary, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
ON CONFLICT (session_id, analysis_date)
DO UPDATE SET
    batch_id = EXCLUDED.batch_id,
    total_registered = EXCLUDED.total_registered,
    present_count = EXCLUDED.present_count,
    attendance_rate = EXCLUDED.attendance_rate,
    respondent_count = EXCLUDED.respondent_count,
    response_rate = EXCLUDED.response_rate,
    rating_count = EXCLUDED.rating_count,
    average_rating = EXCLUDED.average_rating,
    low_ratings_percentage = EXCLUDED.low_ratings_percentage,
    quiz_average = EXCLUDED.quiz_average,
    quiz_std_dev = EXCLUDED.quiz_std_dev,
    quiz_min = EXCLUDED.quiz_min,
    quiz_max = EXCLUDED.quiz_max,
    quiz_percentage = EXCLUDED.quiz_percentage,
    quiz_above_90_count = EXCLUDED.quiz_above_90_count,
    quiz_below_40_count = EXCLUDED.quiz_below_40_count,
    summary = EXCLUDED.summary,
    updated_at = EXCLUDED.updated_at`

// UpsertRecords writes the computed records, overwriting prior values for the
// same (session_id, analysis_date). Safe to re-run for the same date.
func (r *AnalysisRepository) UpsertRecords(ctx context.Context, records []models.SessionAnalyticsRecord) error {
	if len(records) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for i := range records {
		rec := &records[i]
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = now
		}
		rec.UpdatedAt = now
		if _, err := r.db.ExecContext(ctx, upsertAnalyticsQuery,
			rec.ID, rec.SessionID, rec.AnalysisDate, rec.BatchID,
			rec.TotalRegistered, rec.PresentCount, rec.AttendanceRate,
			rec.RespondentCount, rec.ResponseRate,
			rec.RatingCount, rec.AverageRating, rec.LowRatingsPercentage,
			rec.QuizAverage, rec.QuizStdDev, rec.QuizMin, rec.QuizMax, rec.QuizPercentage,
			rec.QuizAbove90Count, rec.QuizBelow40Count,
			rec.Summary, rec.CreatedAt, rec.UpdatedAt,
		); err != nil {
			return fmt.Errorf("upsert analytics record for session %s: %w", rec.SessionID, err)
		}
	}
	return nil
}

// RecordsByDate returns previously computed records for the analysis date,
// ordered by the underlying session timestamp.
func (r *AnalysisRepository) RecordsByDate(ctx context.Context, date time.Time) ([]models.SessionAnalyticsRecord, error) {
	query := `SELECT sa.id, sa.session_id, sa.analysis_date, sa.batch_id,
        sa.total_registered, sa.present_count, sa.attendance_rate,
        sa.respondent_count, sa.response_rate,
        sa.rating_count, sa.average_rating, sa.low_ratings_percentage,
        sa.quiz_average, sa.quiz_std_dev, sa.quiz_min, sa.quiz_max, sa.quiz_percentage,
        sa.quiz_above_90_count, sa.quiz_below_40_count,
        sa.summary, sa.created_at, sa.updated_at
        FROM session_analytics sa
        JOIN sessions s ON s.id = sa.session_id
        WHERE sa.analysis_date = $1
        ORDER BY s.starts_at ASC`
	var records []models.SessionAnalyticsRecord
	if err := r.db.SelectContext(ctx, &records, query, date); err != nil {
		return nil, fmt.Errorf("query analytics records: %w", err)
	}
	return records, nil
}
