package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/campushq/campus-admin-api/internal/dto"
	"github.com/campushq/campus-admin-api/internal/models"
	appErrors "github.com/campushq/campus-admin-api/pkg/errors"
)

type jobPostingRepository interface {
	Create(ctx context.Context, p *models.JobPosting) error
	GetByID(ctx context.Context, id string) (*models.JobPosting, error)
	List(ctx context.Context, filter models.JobPostingFilter) ([]models.JobPosting, *models.Pagination, error)
	Update(ctx context.Context, id string, title, company, description, applyURL *string, deadline *time.Time) error
	Delete(ctx context.Context, id string) error
}

// JobPostingService manages placement opportunities published to students.
type JobPostingService struct {
	repo   jobPostingRepository
	logger *zap.Logger
}

func NewJobPostingService(repo jobPostingRepository, logger *zap.Logger) *JobPostingService {
	return &JobPostingService{repo: repo, logger: logger}
}

func (s *JobPostingService) Create(ctx context.Context, createdBy string, req dto.CreateJobPostingRequest) (*models.JobPosting, error) {
	deadline, err := parseDeadline(req.Deadline)
	if err != nil {
		return nil, err
	}
	posting := &models.JobPosting{
		Title:       req.Title,
		Company:     req.Company,
		Description: req.Description,
		ApplyURL:    req.ApplyURL,
		Deadline:    deadline,
		CreatedBy:   createdBy,
	}
	if err := s.repo.Create(ctx, posting); err != nil {
		return nil, err
	}
	s.logger.Info("job posting created", zap.String("posting_id", posting.ID), zap.String("company", posting.Company))
	return posting, nil
}

// GetByID returns a posting. Students only see postings whose deadline has
// not passed; admins can fetch expired ones.
func (s *JobPostingService) GetByID(ctx context.Context, id string, includeExpired bool) (*models.JobPosting, error) {
	posting, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !includeExpired && posting.Deadline != nil && posting.Deadline.Before(time.Now().UTC()) {
		return nil, appErrors.ErrPostingExpired
	}
	return posting, nil
}

func (s *JobPostingService) List(ctx context.Context, filter models.JobPostingFilter) ([]models.JobPosting, *models.Pagination, error) {
	return s.repo.List(ctx, filter)
}

func (s *JobPostingService) Update(ctx context.Context, id string, req dto.UpdateJobPostingRequest) (*models.JobPosting, error) {
	deadline, err := parseDeadline(req.Deadline)
	if err != nil {
		return nil, err
	}
	if req.Title == nil && req.Company == nil && req.Description == nil && req.ApplyURL == nil && deadline == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no fields to update")
	}
	if err := s.repo.Update(ctx, id, req.Title, req.Company, req.Description, req.ApplyURL, deadline); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *JobPostingService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("job posting deleted", zap.String("posting_id", id))
	return nil
}

func parseDeadline(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, *raw)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "deadline must be RFC3339")
	}
	utc := parsed.UTC()
	return &utc, nil
}
