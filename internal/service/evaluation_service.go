package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/campushq/campus-admin-api/internal/dto"
	"github.com/campushq/campus-admin-api/internal/models"
	appErrors "github.com/campushq/campus-admin-api/pkg/errors"
)

type evaluationRepository interface {
	Upsert(ctx context.Context, e *models.Evaluation) error
	ListByStudent(ctx context.Context, studentID, term string) ([]models.Evaluation, error)
	TermReport(ctx context.Context, term string) ([]models.EvaluationReportRow, error)
}

// EvaluationService manages per-criterion student evaluations. The row for a
// (student, term, criterion) triple is unique; re-submitting replaces it.
type EvaluationService struct {
	repo   evaluationRepository
	logger *zap.Logger
}

func NewEvaluationService(repo evaluationRepository, logger *zap.Logger) *EvaluationService {
	return &EvaluationService{repo: repo, logger: logger}
}

func (s *EvaluationService) Upsert(ctx context.Context, createdBy string, req dto.UpsertEvaluationRequest) (*models.Evaluation, error) {
	if req.Score > req.MaxScore {
		return nil, appErrors.Clone(appErrors.ErrValidation, "score exceeds max_score")
	}
	evaluation := &models.Evaluation{
		StudentID: req.StudentID,
		Term:      req.Term,
		Criterion: req.Criterion,
		Score:     req.Score,
		MaxScore:  req.MaxScore,
		Remarks:   req.Remarks,
		CreatedBy: createdBy,
	}
	if err := s.repo.Upsert(ctx, evaluation); err != nil {
		return nil, err
	}
	s.logger.Info("evaluation recorded",
		zap.String("student_id", req.StudentID),
		zap.String("term", req.Term),
		zap.String("criterion", req.Criterion))
	return evaluation, nil
}

func (s *EvaluationService) ListByStudent(ctx context.Context, studentID, term string) ([]models.Evaluation, error) {
	return s.repo.ListByStudent(ctx, studentID, term)
}

// TermReport aggregates every student's scores for a term, for export.
func (s *EvaluationService) TermReport(ctx context.Context, term string) ([]models.EvaluationReportRow, error) {
	return s.repo.TermReport(ctx, term)
}
