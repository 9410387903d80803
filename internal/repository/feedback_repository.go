package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campushq/campus-admin-api/internal/models"
)

// FeedbackRepository manages append-only feedback responses.
type FeedbackRepository struct {
	db *sqlx.DB
}

// NewFeedbackRepository instantiates the repository.
func NewFeedbackRepository(db *sqlx.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// Insert appends the responses; no updates once submitted.
func (r *FeedbackRepository) Insert(ctx context.Context, responses []models.FeedbackResponse) error {
	if len(responses) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin feedback insert: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	query := `INSERT INTO feedback_responses (id, session_id, student_id, question_id, answer, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`
	now := time.Now().UTC()
	for i := range responses {
		resp := &responses[i]
		if resp.ID == "" {
			resp.ID = uuid.NewString()
		}
		if resp.CreatedAt.IsZero() {
			resp.CreatedAt = now
		}
		if _, err := tx.ExecContext(ctx, query, resp.ID, resp.SessionID, resp.StudentID, resp.QuestionID, resp.Answer, resp.CreatedAt); err != nil {
			return fmt.Errorf("insert feedback response: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit feedback insert: %w", err)
	}
	return nil
}

// ListBySession returns all responses for a session.
func (r *FeedbackRepository) ListBySession(ctx context.Context, sessionID string) ([]models.FeedbackResponse, error) {
	var rows []models.FeedbackResponse
	query := `SELECT id, session_id, student_id, question_id, answer, created_at
        FROM feedback_responses WHERE session_id = $1 ORDER BY created_at ASC`
	if err := r.db.SelectContext(ctx, &rows, query, sessionID); err != nil {
		return nil, fmt.Errorf("query session feedback: %w", err)
	}
	return rows, nil
}
