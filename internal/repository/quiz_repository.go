package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campushq/campus-admin-api/internal/models"
)

// QuizRepository manages per-session quiz scores.
type QuizRepository struct {
	db *sqlx.DB
}

// NewQuizRepository instantiates the repository.
func NewQuizRepository(db *sqlx.DB) *QuizRepository {
	return &QuizRepository{db: db}
}

// BulkUpsert writes one score per (session, student); recomputation overwrites.
func (r *QuizRepository) BulkUpsert(ctx context.Context, scores []models.QuizScore) error {
	if len(scores) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin quiz upsert: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	query := `INSERT INTO quiz_scores (id, session_id, student_id, score, max_score, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (session_id, student_id)
        DO UPDATE SET score = EXCLUDED.score, max_score = EXCLUDED.max_score, updated_at = EXCLUDED.updated_at`
	now := time.Now().UTC()
	for i := range scores {
		score := &scores[i]
		if score.ID == "" {
			score.ID = uuid.NewString()
		}
		if score.CreatedAt.IsZero() {
			score.CreatedAt = now
		}
		score.UpdatedAt = now
		if _, err := tx.ExecContext(ctx, query, score.ID, score.SessionID, score.StudentID, score.Score, score.MaxScore, score.CreatedAt, score.UpdatedAt); err != nil {
			return fmt.Errorf("upsert quiz score for student %s: %w", score.StudentID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit quiz upsert: %w", err)
	}
	return nil
}

// ListBySession returns the session's quiz scores.
func (r *QuizRepository) ListBySession(ctx context.Context, sessionID string) ([]models.QuizScore, error) {
	var rows []models.QuizScore
	query := `SELECT id, session_id, student_id, score, max_score, created_at, updated_at
        FROM quiz_scores WHERE session_id = $1 ORDER BY student_id ASC`
	if err := r.db.SelectContext(ctx, &rows, query, sessionID); err != nil {
		return nil, fmt.Errorf("query session quiz scores: %w", err)
	}
	return rows, nil
}
