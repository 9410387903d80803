package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campushq/campus-admin-api/internal/models"
	appErrors "github.com/campushq/campus-admin-api/pkg/errors"
)

const sessionColumns = "id, starts_at, faculty_id, course_id, section_id, batch_id, topic, venue, created_at, updated_at"

// SessionRepository manages scheduled session rows.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository instantiates the repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a new session.
func (r *SessionRepository) Create(ctx context.Context, s *models.Session) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now
	query := `INSERT INTO sessions (id, starts_at, faculty_id, course_id, section_id, batch_id, topic, venue, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	if _, err := r.db.ExecContext(ctx, query, s.ID, s.StartsAt, s.FacultyID, s.CourseID, s.SectionID, s.BatchID, s.Topic, s.Venue, s.CreatedAt, s.UpdatedAt); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// GetByID fetches a single session.
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*models.Session, error) {
	var s models.Session
	query := fmt.Sprintf("SELECT %s FROM sessions WHERE id = $1", sessionColumns)
	if err := r.db.GetContext(ctx, &s, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, fmt.Errorf("query session: %w", err)
	}
	return &s, nil
}

// List returns sessions matching the filter with pagination.
func (r *SessionRepository) List(ctx context.Context, filter models.SessionFilter) ([]models.Session, *models.Pagination, error) {
	var builder strings.Builder
	builder.WriteString("FROM sessions WHERE 1=1")
	var args []interface{}
	if filter.BatchID != "" {
		args = append(args, filter.BatchID)
		builder.WriteString(fmt.Sprintf(" AND batch_id = $%d", len(args)))
	}
	if filter.FacultyID != "" {
		args = append(args, filter.FacultyID)
		builder.WriteString(fmt.Sprintf(" AND faculty_id = $%d", len(args)))
	}
	if filter.DateFrom != nil {
		args = append(args, *filter.DateFrom)
		builder.WriteString(fmt.Sprintf(" AND starts_at >= $%d", len(args)))
	}
	if filter.DateTo != nil {
		args = append(args, *filter.DateTo)
		builder.WriteString(fmt.Sprintf(" AND starts_at < $%d", len(args)))
	}

	var total int
	countQuery := "SELECT COUNT(*) " + builder.String()
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, nil, fmt.Errorf("count sessions: %w", err)
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	args = append(args, pageSize, (page-1)*pageSize)
	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY starts_at ASC LIMIT $%d OFFSET $%d",
		sessionColumns, builder.String(), len(args)-1, len(args))

	var sessions []models.Session
	if err := r.db.SelectContext(ctx, &sessions, listQuery, args...); err != nil {
		return nil, nil, fmt.Errorf("query sessions: %w", err)
	}

	return sessions, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// Update applies administrative edits to a session.
func (r *SessionRepository) Update(ctx context.Context, id string, startsAt *time.Time, topic, venue *string) error {
	var sets []string
	var args []interface{}
	if startsAt != nil {
		args = append(args, *startsAt)
		sets = append(sets, fmt.Sprintf("starts_at = $%d", len(args)))
	}
	if topic != nil {
		args = append(args, *topic)
		sets = append(sets, fmt.Sprintf("topic = $%d", len(args)))
	}
	if venue != nil {
		args = append(args, *venue)
		sets = append(sets, fmt.Sprintf("venue = $%d", len(args)))
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, time.Now().UTC())
	sets = append(sets, fmt.Sprintf("updated_at = $%d", len(args)))
	args = append(args, id)
	query := fmt.Sprintf("UPDATE sessions SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "session not found")
	}
	return nil
}

// Delete removes a session.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "session not found")
	}
	return nil
}
