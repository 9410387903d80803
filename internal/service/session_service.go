package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/campushq/campus-admin-api/internal/dto"
	"github.com/campushq/campus-admin-api/internal/models"
	appErrors "github.com/campushq/campus-admin-api/pkg/errors"
)

type sessionRepository interface {
	Create(ctx context.Context, s *models.Session) error
	GetByID(ctx context.Context, id string) (*models.Session, error)
	List(ctx context.Context, filter models.SessionFilter) ([]models.Session, *models.Pagination, error)
	Update(ctx context.Context, id string, startsAt *time.Time, topic, venue *string) error
	Delete(ctx context.Context, id string) error
}

// SessionService manages scheduled teaching sessions.
type SessionService struct {
	repo   sessionRepository
	logger *zap.Logger
}

func NewSessionService(repo sessionRepository, logger *zap.Logger) *SessionService {
	return &SessionService{repo: repo, logger: logger}
}

func (s *SessionService) Create(ctx context.Context, req dto.CreateSessionRequest) (*models.Session, error) {
	startsAt, err := time.Parse(time.RFC3339, req.StartsAt)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "starts_at must be RFC3339")
	}
	session := &models.Session{
		StartsAt:  startsAt.UTC(),
		FacultyID: req.FacultyID,
		CourseID:  req.CourseID,
		SectionID: req.SectionID,
		BatchID:   req.BatchID,
		Topic:     req.Topic,
		Venue:     req.Venue,
	}
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, err
	}
	s.logger.Info("session created", zap.String("session_id", session.ID), zap.String("batch_id", session.BatchID))
	return session, nil
}

func (s *SessionService) GetByID(ctx context.Context, id string) (*models.Session, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *SessionService) List(ctx context.Context, filter models.SessionFilter) ([]models.Session, *models.Pagination, error) {
	return s.repo.List(ctx, filter)
}

func (s *SessionService) Update(ctx context.Context, id string, req dto.UpdateSessionRequest) (*models.Session, error) {
	var startsAt *time.Time
	if req.StartsAt != nil {
		parsed, err := time.Parse(time.RFC3339, *req.StartsAt)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "starts_at must be RFC3339")
		}
		utc := parsed.UTC()
		startsAt = &utc
	}
	if startsAt == nil && req.Topic == nil && req.Venue == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no fields to update")
	}
	if err := s.repo.Update(ctx, id, startsAt, req.Topic, req.Venue); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *SessionService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("session deleted", zap.String("session_id", id))
	return nil
}
