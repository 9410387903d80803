package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/campushq/campus-admin-api/internal/models"
	"github.com/campushq/campus-admin-api/pkg/config"
	appErrors "github.com/campushq/campus-admin-api/pkg/errors"
	"github.com/campushq/campus-admin-api/pkg/export"
)

const analysisDateLayout = "2006-01-02"

// AnalysisRepository abstracts persistence for the analytics pipeline.
type AnalysisRepository interface {
	SectionIDs(ctx context.Context, batchID string) ([]string, error)
	SessionsForDate(ctx context.Context, sectionIDs []string, from, to time.Time, limit int) ([]models.Session, error)
	AttendanceForSessions(ctx context.Context, sessionIDs []string, limit int) ([]models.AttendanceRecord, error)
	FeedbackForSessions(ctx context.Context, sessionIDs []string, limit int) ([]models.FeedbackResponse, error)
	QuizScoresForSessions(ctx context.Context, sessionIDs []string, limit int) ([]models.QuizScore, error)
	UpsertRecords(ctx context.Context, records []models.SessionAnalyticsRecord) error
	RecordsByDate(ctx context.Context, date time.Time) ([]models.SessionAnalyticsRecord, error)
}

// Narrator generates prose summaries for a batch of sessions.
type Narrator interface {
	Summarize(ctx context.Context, sessions []models.Session, stats map[string]SessionStatistics) map[string]string
}

// AnalysisService runs the session analytics pipeline: fetch source rows,
// compute per-session statistics, generate summaries, persist, and append an
// audit row per session to the configured spreadsheet.
type AnalysisService struct {
	repo     AnalysisRepository
	narrator Narrator
	sheet    export.RowAppender
	cache    *CacheService
	metrics  *MetricsService
	cfg      config.AnalysisConfig
	location *time.Location
	logger   *zap.Logger
}

func NewAnalysisService(repo AnalysisRepository, narrator Narrator, sheet export.RowAppender, cache *CacheService, metrics *MetricsService, cfg config.AnalysisConfig, logger *zap.Logger) *AnalysisService {
	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Warn("invalid analysis timezone, falling back to UTC", zap.String("timezone", cfg.Timezone), zap.Error(err))
		location = time.UTC
	}
	return &AnalysisService{
		repo:     repo,
		narrator: narrator,
		sheet:    sheet,
		cache:    cache,
		metrics:  metrics,
		cfg:      cfg,
		location: location,
		logger:   logger,
	}
}

// RunAnalysis executes the full pipeline for one batch and calendar date.
// The date string is interpreted in the configured institution timezone.
func (s *AnalysisService) RunAnalysis(ctx context.Context, batchID, date string) ([]models.SessionAnalyticsRecord, error) {
	dayStart, err := time.ParseInLocation(analysisDateLayout, date, s.location)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", date))
	}
	dayEnd := time.Date(dayStart.Year(), dayStart.Month(), dayStart.Day()+1, 0, 0, 0, 0, s.location)

	sectionIDs, err := s.repo.SectionIDs(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if len(sectionIDs) == 0 {
		return nil, appErrors.ErrNoSections
	}

	sessions, err := s.repo.SessionsForDate(ctx, sectionIDs, dayStart, dayEnd, s.cfg.SessionLimit)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, appErrors.ErrNoSessions
	}

	sessionIDs := make([]string, 0, len(sessions))
	for _, session := range sessions {
		sessionIDs = append(sessionIDs, session.ID)
	}

	source, err := s.fetchSourceRows(ctx, sessionIDs)
	if err != nil {
		return nil, err
	}
	source.Sessions = sessions

	stats := s.computeStatistics(source)
	summaries := s.narrator.Summarize(ctx, sessions, stats)

	records := make([]models.SessionAnalyticsRecord, 0, len(sessions))
	for _, session := range sessions {
		records = append(records, buildAnalyticsRecord(session, dayStart, stats[session.ID], summaries[session.ID]))
	}

	upsertStart := time.Now()
	if err := s.repo.UpsertRecords(ctx, records); err != nil {
		return nil, err
	}
	s.metrics.ObserveDBQuery("upsert_analytics_records", time.Since(upsertStart))

	s.appendAuditRows(ctx, date, records, sessions)

	if s.cache.Enabled() {
		if err := s.cache.Invalidate(ctx, "analytics:*"); err != nil {
			s.logger.Warn("analytics cache invalidation failed", zap.Error(err))
		}
	}

	s.logger.Info("analysis pipeline completed",
		zap.String("batch_id", batchID),
		zap.String("date", date),
		zap.Int("sessions", len(records)))
	return records, nil
}

// fetchSourceRows loads the three source row sets concurrently.
func (s *AnalysisService) fetchSourceRows(ctx context.Context, sessionIDs []string) (models.AnalysisSourceRows, error) {
	var source models.AnalysisSourceRows
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		start := time.Now()
		rows, err := s.repo.AttendanceForSessions(gctx, sessionIDs, s.cfg.RowLimit)
		s.metrics.ObserveDBQuery("attendance_for_sessions", time.Since(start))
		if err != nil {
			return fmt.Errorf("fetch attendance: %w", err)
		}
		source.Attendance = rows
		return nil
	})
	g.Go(func() error {
		start := time.Now()
		rows, err := s.repo.FeedbackForSessions(gctx, sessionIDs, s.cfg.RowLimit)
		s.metrics.ObserveDBQuery("feedback_for_sessions", time.Since(start))
		if err != nil {
			return fmt.Errorf("fetch feedback: %w", err)
		}
		source.Feedback = rows
		return nil
	})
	g.Go(func() error {
		start := time.Now()
		rows, err := s.repo.QuizScoresForSessions(gctx, sessionIDs, s.cfg.RowLimit)
		s.metrics.ObserveDBQuery("quiz_scores_for_sessions", time.Since(start))
		if err != nil {
			return fmt.Errorf("fetch quiz scores: %w", err)
		}
		source.Quizzes = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return models.AnalysisSourceRows{}, err
	}
	return source, nil
}

// computeStatistics groups source rows by session and derives statistics.
// Sessions with no rows of some kind still get an entry.
func (s *AnalysisService) computeStatistics(source models.AnalysisSourceRows) map[string]SessionStatistics {
	attendanceBySession := make(map[string][]models.AttendanceRecord)
	for _, row := range source.Attendance {
		attendanceBySession[row.SessionID] = append(attendanceBySession[row.SessionID], row)
	}
	feedbackBySession := make(map[string][]models.FeedbackResponse)
	for _, row := range source.Feedback {
		feedbackBySession[row.SessionID] = append(feedbackBySession[row.SessionID], row)
	}
	quizzesBySession := make(map[string][]models.QuizScore)
	for _, row := range source.Quizzes {
		quizzesBySession[row.SessionID] = append(quizzesBySession[row.SessionID], row)
	}

	stats := make(map[string]SessionStatistics, len(source.Sessions))
	for _, session := range source.Sessions {
		stats[session.ID] = ComputeSessionStatistics(
			attendanceBySession[session.ID],
			feedbackBySession[session.ID],
			quizzesBySession[session.ID],
			s.cfg.RatingQuestion,
		)
	}
	return stats
}

func buildAnalyticsRecord(session models.Session, analysisDate time.Time, stats SessionStatistics, summary string) models.SessionAnalyticsRecord {
	return models.SessionAnalyticsRecord{
		SessionID:            session.ID,
		AnalysisDate:         analysisDate,
		BatchID:              session.BatchID,
		TotalRegistered:      stats.TotalRegistered,
		PresentCount:         stats.PresentCount,
		AttendanceRate:       stats.AttendanceRate,
		RespondentCount:      stats.RespondentCount,
		ResponseRate:         stats.ResponseRate,
		RatingCount:          stats.RatingCount,
		AverageRating:        stats.AverageRating,
		LowRatingsPercentage: stats.LowRatingsPercentage,
		QuizAverage:          stats.QuizAverage,
		QuizStdDev:           stats.QuizStdDev,
		QuizMin:              stats.QuizMin,
		QuizMax:              stats.QuizMax,
		QuizPercentage:       stats.QuizPercentage,
		QuizAbove90Count:     stats.QuizAbove90Count,
		QuizBelow40Count:     stats.QuizBelow40Count,
		Summary:              summary,
	}
}

// appendAuditRows mirrors the persisted records into the audit spreadsheet.
// Failures are logged and never fail the pipeline.
func (s *AnalysisService) appendAuditRows(ctx context.Context, date string, records []models.SessionAnalyticsRecord, sessions []models.Session) {
	if s.sheet == nil {
		return
	}
	topicsByID := make(map[string]string, len(sessions))
	for _, session := range sessions {
		topicsByID[session.ID] = session.Topic
	}
	rows := make([][]interface{}, 0, len(records))
	for _, record := range records {
		rows = append(rows, []interface{}{
			date,
			record.SessionID,
			topicsByID[record.SessionID],
			record.TotalRegistered,
			record.PresentCount,
			record.AttendanceRate,
			record.RespondentCount,
			record.ResponseRate,
			record.AverageRating,
			record.LowRatingsPercentage,
			record.QuizPercentage,
			record.Summary,
		})
	}
	if err := s.sheet.Append(ctx, rows); err != nil {
		s.logger.Warn("sheet append failed", zap.String("date", date), zap.Error(err))
	}
}

// AnalyticsByDate returns the persisted analytics rows for a calendar date,
// reading through the cache. The bool reports a cache hit.
func (s *AnalysisService) AnalyticsByDate(ctx context.Context, date string) ([]models.SessionAnalyticsRecord, bool, error) {
	dayStart, err := time.ParseInLocation(analysisDateLayout, date, s.location)
	if err != nil {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", date))
	}

	cacheKey := fmt.Sprintf("analytics:date:%s", date)
	if s.cache.Enabled() {
		var cached []models.SessionAnalyticsRecord
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return cached, true, nil
		}
	}

	records, err := s.repo.RecordsByDate(ctx, dayStart)
	if err != nil {
		return nil, false, err
	}

	if s.cache.Enabled() {
		if err := s.cache.Set(ctx, cacheKey, records, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("analytics cache set failed", zap.Error(err))
		}
	}
	return records, false, nil
}
