package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campushq/campus-admin-api/internal/models"
)

// AttendanceRepository manages per-session attendance flags.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository instantiates the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// BulkUpsert writes one row per (session, student), overwriting the present
// flag on conflict so admins can flip it.
func (r *AttendanceRepository) BulkUpsert(ctx context.Context, records []models.AttendanceRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin attendance upsert: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	query := `INSERT INTO attendance_records (id, session_id, student_id, present, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (session_id, student_id)
        DO UPDATE SET present = EXCLUDED.present, updated_at = EXCLUDED.updated_at`
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
		if _, err := tx.ExecContext(ctx, query, rec.ID, rec.SessionID, rec.StudentID, rec.Present, rec.CreatedAt, rec.UpdatedAt); err != nil {
			return fmt.Errorf("upsert attendance for student %s: %w", rec.StudentID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit attendance upsert: %w", err)
	}
	return nil
}

// ListBySession returns the session's attendance rows.
func (r *AttendanceRepository) ListBySession(ctx context.Context, sessionID string) ([]models.AttendanceRecord, error) {
	var rows []models.AttendanceRecord
	query := `SELECT id, session_id, student_id, present, created_at, updated_at
        FROM attendance_records WHERE session_id = $1 ORDER BY student_id ASC`
	if err := r.db.SelectContext(ctx, &rows, query, sessionID); err != nil {
		return nil, fmt.Errorf("query session attendance: %w", err)
	}
	return rows, nil
}

// StudentSummary aggregates a student's attendance over a date range.
func (r *AttendanceRepository) StudentSummary(ctx context.Context, studentID string, from, to time.Time) (*models.StudentAttendanceSummary, error) {
	var summary models.StudentAttendanceSummary
	query := `SELECT ar.student_id,
        COUNT(*) AS session_count,
        SUM(CASE WHEN ar.present THEN 1 ELSE 0 END) AS present_count,
        CASE WHEN COUNT(*) = 0 THEN 0
             ELSE (SUM(CASE WHEN ar.present THEN 1 ELSE 0 END)::DECIMAL / COUNT(*)) * 100 END AS percentage
        FROM attendance_records ar
        JOIN sessions s ON s.id = ar.session_id
        WHERE ar.student_id = $1 AND s.starts_at >= $2 AND s.starts_at < $3
        GROUP BY ar.student_id`
	if err := r.db.GetContext(ctx, &summary, query, studentID, from, to); err != nil {
		return nil, fmt.Errorf("query student attendance summary: %w", err)
	}
	return &summary, nil
}
