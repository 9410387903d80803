package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/campushq/campus-admin-api/internal/dto"
	"github.com/campushq/campus-admin-api/internal/models"
	appErrors "github.com/campushq/campus-admin-api/pkg/errors"
)

type quizRepository interface {
	BulkUpsert(ctx context.Context, scores []models.QuizScore) error
	ListBySession(ctx context.Context, sessionID string) ([]models.QuizScore, error)
}

// QuizDistribution summarizes the score spread for one session's quiz.
type QuizDistribution struct {
	SessionID    string   `json:"session_id"`
	ScoreCount   int      `json:"score_count"`
	Average      *float64 `json:"average"`
	StdDev       *float64 `json:"std_dev"`
	Min          *float64 `json:"min"`
	Max          *float64 `json:"max"`
	Percentage   string   `json:"percentage"`
	Above90Count *int     `json:"above_90_count"`
	Below40Count *int     `json:"below_40_count"`
}

// QuizService manages quiz scores and their distribution statistics.
type QuizService struct {
	repo     quizRepository
	sessions sessionGetter
	logger   *zap.Logger
}

func NewQuizService(repo quizRepository, sessions sessionGetter, logger *zap.Logger) *QuizService {
	return &QuizService{repo: repo, sessions: sessions, logger: logger}
}

// BulkUpsert records quiz scores for a session. All entries in one payload
// must share the same max score.
func (s *QuizService) BulkUpsert(ctx context.Context, sessionID string, req dto.UpsertQuizScoresRequest) (int, error) {
	if _, err := s.sessions.GetByID(ctx, sessionID); err != nil {
		return 0, err
	}

	maxScore := req.Scores[0].MaxScore
	seen := make(map[string]struct{}, len(req.Scores))
	scores := make([]models.QuizScore, 0, len(req.Scores))
	for _, entry := range req.Scores {
		if entry.MaxScore != maxScore {
			return 0, appErrors.Clone(appErrors.ErrValidation, "all entries must share the same max_score")
		}
		if entry.Score > entry.MaxScore {
			return 0, appErrors.Clone(appErrors.ErrValidation, "score exceeds max_score for student "+entry.StudentID)
		}
		if _, dup := seen[entry.StudentID]; dup {
			return 0, appErrors.Clone(appErrors.ErrValidation, "duplicate student_id "+entry.StudentID)
		}
		seen[entry.StudentID] = struct{}{}
		scores = append(scores, models.QuizScore{
			SessionID: sessionID,
			StudentID: entry.StudentID,
			Score:     entry.Score,
			MaxScore:  entry.MaxScore,
		})
	}

	if err := s.repo.BulkUpsert(ctx, scores); err != nil {
		return 0, err
	}
	s.logger.Info("quiz scores recorded", zap.String("session_id", sessionID), zap.Int("scores", len(scores)))
	return len(scores), nil
}

func (s *QuizService) ListBySession(ctx context.Context, sessionID string) ([]models.QuizScore, error) {
	if _, err := s.sessions.GetByID(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.repo.ListBySession(ctx, sessionID)
}

// Distribution computes quiz statistics for one session on demand, using the
// same formulas as the analytics pipeline.
func (s *QuizService) Distribution(ctx context.Context, sessionID string) (*QuizDistribution, error) {
	scores, err := s.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	stats := ComputeSessionStatistics(nil, nil, scores, "")
	return &QuizDistribution{
		SessionID:    sessionID,
		ScoreCount:   len(scores),
		Average:      stats.QuizAverage,
		StdDev:       stats.QuizStdDev,
		Min:          stats.QuizMin,
		Max:          stats.QuizMax,
		Percentage:   stats.QuizPercentage,
		Above90Count: stats.QuizAbove90Count,
		Below40Count: stats.QuizBelow40Count,
	}, nil
}
