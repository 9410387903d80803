package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/campushq/campus-admin-api/internal/dto"
	"github.com/campushq/campus-admin-api/internal/models"
	appErrors "github.com/campushq/campus-admin-api/pkg/errors"
)

type attendanceRepository interface {
	BulkUpsert(ctx context.Context, records []models.AttendanceRecord) error
	ListBySession(ctx context.Context, sessionID string) ([]models.AttendanceRecord, error)
	StudentSummary(ctx context.Context, studentID string, from, to time.Time) (*models.StudentAttendanceSummary, error)
}

type sessionGetter interface {
	GetByID(ctx context.Context, id string) (*models.Session, error)
}

// AttendanceService manages per-session attendance marks.
type AttendanceService struct {
	repo     attendanceRepository
	sessions sessionGetter
	logger   *zap.Logger
}

func NewAttendanceService(repo attendanceRepository, sessions sessionGetter, logger *zap.Logger) *AttendanceService {
	return &AttendanceService{repo: repo, sessions: sessions, logger: logger}
}

// BulkUpsert records attendance for a session. Re-submitting for the same
// student overwrites the previous flag, duplicate student IDs in one payload
// are rejected.
func (s *AttendanceService) BulkUpsert(ctx context.Context, sessionID string, req dto.BulkAttendanceRequest) (int, error) {
	if _, err := s.sessions.GetByID(ctx, sessionID); err != nil {
		return 0, err
	}

	seen := make(map[string]struct{}, len(req.Records))
	records := make([]models.AttendanceRecord, 0, len(req.Records))
	for _, entry := range req.Records {
		if _, dup := seen[entry.StudentID]; dup {
			return 0, appErrors.Clone(appErrors.ErrValidation, "duplicate student_id "+entry.StudentID)
		}
		seen[entry.StudentID] = struct{}{}
		records = append(records, models.AttendanceRecord{
			SessionID: sessionID,
			StudentID: entry.StudentID,
			Present:   entry.Present,
		})
	}

	if err := s.repo.BulkUpsert(ctx, records); err != nil {
		return 0, err
	}
	s.logger.Info("attendance recorded", zap.String("session_id", sessionID), zap.Int("records", len(records)))
	return len(records), nil
}

func (s *AttendanceService) ListBySession(ctx context.Context, sessionID string) ([]models.AttendanceRecord, error) {
	if _, err := s.sessions.GetByID(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.repo.ListBySession(ctx, sessionID)
}

// StudentSummary aggregates one student's attendance over a date range.
func (s *AttendanceService) StudentSummary(ctx context.Context, studentID string, from, to time.Time) (*models.StudentAttendanceSummary, error) {
	if !to.After(from) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date range is empty")
	}
	return s.repo.StudentSummary(ctx, studentID, from, to)
}
