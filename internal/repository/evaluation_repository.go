package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campushq/campus-admin-api/internal/models"
)

// EvaluationRepository manages per-criterion student evaluations.
type EvaluationRepository struct {
	db *sqlx.DB
}

// NewEvaluationRepository instantiates the repository.
func NewEvaluationRepository(db *sqlx.DB) *EvaluationRepository {
	return &EvaluationRepository{db: db}
}

// Upsert writes one evaluation per (student, term, criterion).
func (r *EvaluationRepository) Upsert(ctx context.Context, e *models.Evaluation) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now
	query := `INSERT INTO evaluations (id, student_id, term, criterion, score, max_score, remarks, created_by, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        ON CONFLICT (student_id, term, criterion)
        DO UPDATE SET score = EXCLUDED.score, max_score = EXCLUDED.max_score,
            remarks = EXCLUDED.remarks, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, e.ID, e.StudentID, e.Term, e.Criterion, e.Score, e.MaxScore, e.Remarks, e.CreatedBy, e.CreatedAt, e.UpdatedAt); err != nil {
		return fmt.Errorf("upsert evaluation: %w", err)
	}
	return nil
}

// ListByStudent returns a student's evaluations for a term.
func (r *EvaluationRepository) ListByStudent(ctx context.Context, studentID, term string) ([]models.Evaluation, error) {
	var rows []models.Evaluation
	query := `SELECT id, student_id, term, criterion, score, max_score, remarks, created_by, created_at, updated_at
        FROM evaluations WHERE student_id = $1 AND term = $2 ORDER BY criterion ASC`
	if err := r.db.SelectContext(ctx, &rows, query, studentID, term); err != nil {
		return nil, fmt.Errorf("query student evaluations: %w", err)
	}
	return rows, nil
}

// TermReport aggregates all students' evaluation totals for a term.
func (r *EvaluationRepository) TermReport(ctx context.Context, term string) ([]models.EvaluationReportRow, error) {
	var rows []models.EvaluationReportRow
	query := `SELECT e.student_id, u.full_name AS student_name,
        COUNT(*) AS criterion_count,
        SUM(e.score) AS total_score,
        SUM(e.max_score) AS total_max,
        CASE WHEN SUM(e.max_score) = 0 THEN 0
             ELSE (SUM(e.score) / SUM(e.max_score)) * 100 END AS percentage
        FROM evaluations e
        JOIN users u ON u.id = e.student_id
        WHERE e.term = $1
        GROUP BY e.student_id, u.full_name
        ORDER BY percentage DESC`
	if err := r.db.SelectContext(ctx, &rows, query, term); err != nil {
		return nil, fmt.Errorf("query evaluation report: %w", err)
	}
	return rows, nil
}
