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

const jobPostingColumns = "id, title, company, description, apply_url, deadline, created_by, created_at, updated_at"

// JobPostingRepository manages published job postings.
type JobPostingRepository struct {
	db *sqlx.DB
}

// NewJobPostingRepository instantiates the repository.
func NewJobPostingRepository(db *sqlx.DB) *JobPostingRepository {
	return &JobPostingRepository{db: db}
}

// Create inserts a posting.
func (r *JobPostingRepository) Create(ctx context.Context, p *models.JobPosting) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	query := `INSERT INTO job_postings (id, title, company, description, apply_url, deadline, created_by, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	if _, err := r.db.ExecContext(ctx, query, p.ID, p.Title, p.Company, p.Description, p.ApplyURL, p.Deadline, p.CreatedBy, p.CreatedAt, p.UpdatedAt); err != nil {
		return fmt.Errorf("insert job posting: %w", err)
	}
	return nil
}

// GetByID fetches one posting.
func (r *JobPostingRepository) GetByID(ctx context.Context, id string) (*models.JobPosting, error) {
	var p models.JobPosting
	query := fmt.Sprintf("SELECT %s FROM job_postings WHERE id = $1", jobPostingColumns)
	if err := r.db.GetContext(ctx, &p, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "job posting not found")
		}
		return nil, fmt.Errorf("query job posting: %w", err)
	}
	return &p, nil
}

// List returns postings matching the filter, newest first.
func (r *JobPostingRepository) List(ctx context.Context, filter models.JobPostingFilter) ([]models.JobPosting, *models.Pagination, error) {
	var builder strings.Builder
	builder.WriteString("FROM job_postings WHERE 1=1")
	var args []interface{}
	if filter.ActiveOnly {
		args = append(args, time.Now().UTC())
		builder.WriteString(fmt.Sprintf(" AND (deadline IS NULL OR deadline >= $%d)", len(args)))
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+builder.String(), args...); err != nil {
		return nil, nil, fmt.Errorf("count job postings: %w", err)
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
	query := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		jobPostingColumns, builder.String(), len(args)-1, len(args))

	var postings []models.JobPosting
	if err := r.db.SelectContext(ctx, &postings, query, args...); err != nil {
		return nil, nil, fmt.Errorf("query job postings: %w", err)
	}
	return postings, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// Update patches a posting.
func (r *JobPostingRepository) Update(ctx context.Context, id string, title, company, description, applyURL *string, deadline *time.Time) error {
	var sets []string
	var args []interface{}
	appendSet := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if title != nil {
		appendSet("title", *title)
	}
	if company != nil {
		appendSet("company", *company)
	}
	if description != nil {
		appendSet("description", *description)
	}
	if applyURL != nil {
		appendSet("apply_url", *applyURL)
	}
	if deadline != nil {
		appendSet("deadline", *deadline)
	}
	if len(sets) == 0 {
		return nil
	}
	appendSet("updated_at", time.Now().UTC())
	args = append(args, id)
	query := fmt.Sprintf("UPDATE job_postings SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update job posting: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "job posting not found")
	}
	return nil
}

// Delete removes a posting.
func (r *JobPostingRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM job_postings WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete job posting: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "job posting not found")
	}
	return nil
}
