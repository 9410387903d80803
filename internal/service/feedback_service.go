package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/campushq/campus-admin-api/internal/dto"
	"github.com/campushq/campus-admin-api/internal/models"
)

type feedbackRepository interface {
	Insert(ctx context.Context, responses []models.FeedbackResponse) error
	ListBySession(ctx context.Context, sessionID string) ([]models.FeedbackResponse, error)
}

// FeedbackService accepts student feedback submissions. Submissions are
// append-only: corrections arrive as new rows.
type FeedbackService struct {
	repo     feedbackRepository
	sessions sessionGetter
	logger   *zap.Logger
}

func NewFeedbackService(repo feedbackRepository, sessions sessionGetter, logger *zap.Logger) *FeedbackService {
	return &FeedbackService{repo: repo, sessions: sessions, logger: logger}
}

func (s *FeedbackService) Submit(ctx context.Context, sessionID, studentID string, req dto.SubmitFeedbackRequest) (int, error) {
	if _, err := s.sessions.GetByID(ctx, sessionID); err != nil {
		return 0, err
	}

	responses := make([]models.FeedbackResponse, 0, len(req.Answers))
	for _, answer := range req.Answers {
		responses = append(responses, models.FeedbackResponse{
			SessionID:  sessionID,
			StudentID:  studentID,
			QuestionID: answer.QuestionID,
			Answer:     answer.Answer,
		})
	}
	if err := s.repo.Insert(ctx, responses); err != nil {
		return 0, err
	}
	s.logger.Info("feedback submitted",
		zap.String("session_id", sessionID),
		zap.String("student_id", studentID),
		zap.Int("answers", len(responses)))
	return len(responses), nil
}

func (s *FeedbackService) ListBySession(ctx context.Context, sessionID string) ([]models.FeedbackResponse, error) {
	if _, err := s.sessions.GetByID(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.repo.ListBySession(ctx, sessionID)
}
