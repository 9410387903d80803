package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/campushq/campus-admin-api/internal/models"
)

// RatingRepository reads raw rating answers for faculty heatmaps.
type RatingRepository struct {
	db *sqlx.DB
}

// NewRatingRepository instantiates the repository.
func NewRatingRepository(db *sqlx.DB) *RatingRepository {
	return &RatingRepository{db: db}
}

// RatingRows returns the (session, answer) pairs for a faculty's rating
// question within the date range. Extraction happens in the service layer
// because answers mix numeric strings and labels.
func (r *RatingRepository) RatingRows(ctx context.Context, facultyID, ratingQuestionID string, from, to time.Time) ([]models.FacultyRatingRow, error) {
	var rows []models.FacultyRatingRow
	query := `SELECT fr.session_id, s.starts_at, fr.answer
        FROM feedback_responses fr
        JOIN sessions s ON s.id = fr.session_id
        WHERE s.faculty_id = $1 AND fr.question_id = $2
          AND s.starts_at >= $3 AND s.starts_at < $4
        ORDER BY s.starts_at ASC`
	if err := r.db.SelectContext(ctx, &rows, query, facultyID, ratingQuestionID, from, to); err != nil {
		return nil, fmt.Errorf("query faculty rating rows: %w", err)
	}
	return rows, nil
}
