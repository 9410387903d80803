package service

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campushq/campus-admin-api/internal/models"
	appErrors "github.com/campushq/campus-admin-api/pkg/errors"
	"github.com/campushq/campus-admin-api/pkg/export"
	"github.com/campushq/campus-admin-api/pkg/storage"
)

// Export formats accepted by the export endpoints.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

type analyticsSource interface {
	AnalyticsByDate(ctx context.Context, date string) ([]models.SessionAnalyticsRecord, bool, error)
}

type evaluationSource interface {
	TermReport(ctx context.Context, term string) ([]models.EvaluationReportRow, error)
}

// ExportResult describes a rendered export file and its download token.
type ExportResult struct {
	ExportID  string    `json:"export_id"`
	Filename  string    `json:"filename"`
	Format    string    `json:"format"`
	RowCount  int       `json:"row_count"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ExportService renders analytics and evaluation datasets to CSV or PDF,
// stores the file locally, and hands out signed download tokens.
type ExportService struct {
	analytics   analyticsSource
	evaluations evaluationSource
	csv         *export.CSVExporter
	pdf         *export.PDFExporter
	store       *storage.LocalStorage
	signer      *storage.SignedURLSigner
	logger      *zap.Logger
}

func NewExportService(analytics analyticsSource, evaluations evaluationSource, store *storage.LocalStorage, signer *storage.SignedURLSigner, logger *zap.Logger) *ExportService {
	return &ExportService{
		analytics:   analytics,
		evaluations: evaluations,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
		store:       store,
		signer:      signer,
		logger:      logger,
	}
}

// ExportAnalytics renders the persisted analytics rows for a date.
func (s *ExportService) ExportAnalytics(ctx context.Context, date, format string) (*ExportResult, error) {
	records, _, err := s.analytics.AnalyticsByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no analytics rows for the requested date")
	}
	dataset := analyticsDataset(records)
	title := fmt.Sprintf("Session Analytics %s", date)
	return s.render(dataset, title, fmt.Sprintf("analytics-%s", date), format)
}

// ExportEvaluations renders the per-student evaluation report for a term.
func (s *ExportService) ExportEvaluations(ctx context.Context, term, format string) (*ExportResult, error) {
	rows, err := s.evaluations.TermReport(ctx, term)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no evaluations for the requested term")
	}
	dataset := evaluationDataset(rows)
	title := fmt.Sprintf("Evaluation Report %s", term)
	return s.render(dataset, title, fmt.Sprintf("evaluations-%s", term), format)
}

func (s *ExportService) render(dataset export.Dataset, title, stem, format string) (*ExportResult, error) {
	var (
		payload []byte
		err     error
	)
	switch format {
	case FormatCSV:
		payload, err = s.csv.Render(dataset)
	case FormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported format %q", format))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	exportID := uuid.NewString()
	filename := fmt.Sprintf("%s-%s.%s", stem, exportID[:8], format)
	if _, err := s.store.Save(filename, payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store export")
	}

	token, expiresAt, err := s.signer.Generate(exportID, filename)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download token")
	}

	s.logger.Info("export rendered",
		zap.String("export_id", exportID),
		zap.String("filename", filename),
		zap.String("format", format),
		zap.Int("rows", len(dataset.Rows)))
	return &ExportResult{
		ExportID:  exportID,
		Filename:  filename,
		Format:    format,
		RowCount:  len(dataset.Rows),
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// Open validates a download token and opens the referenced file.
func (s *ExportService) Open(token string) (*os.File, string, error) {
	_, filename, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download token")
	}
	file, err := s.store.Open(filename)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "export file no longer exists")
	}
	return file, filename, nil
}

// StartCleanup removes export files older than ttl on a fixed interval until
// the context is cancelled.
func (s *ExportService) StartCleanup(ctx context.Context, interval, ttl time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed, err := s.store.CleanupOlderThan(ttl)
				if err != nil {
					s.logger.Warn("export cleanup failed", zap.Error(err))
					continue
				}
				if len(removed) > 0 {
					s.logger.Info("export cleanup removed files", zap.Int("count", len(removed)))
				}
			}
		}
	}()
}

func analyticsDataset(records []models.SessionAnalyticsRecord) export.Dataset {
	headers := []string{
		"session_id", "batch_id", "total_registered", "present_count", "attendance_rate",
		"respondent_count", "response_rate", "average_rating", "low_ratings_percentage",
		"quiz_percentage", "summary",
	}
	rows := make([]map[string]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, map[string]string{
			"session_id":             r.SessionID,
			"batch_id":               r.BatchID,
			"total_registered":       fmt.Sprintf("%d", r.TotalRegistered),
			"present_count":          fmt.Sprintf("%d", r.PresentCount),
			"attendance_rate":        r.AttendanceRate,
			"respondent_count":       fmt.Sprintf("%d", r.RespondentCount),
			"response_rate":          r.ResponseRate,
			"average_rating":         r.AverageRating,
			"low_ratings_percentage": r.LowRatingsPercentage,
			"quiz_percentage":        r.QuizPercentage,
			"summary":                r.Summary,
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

func evaluationDataset(rows []models.EvaluationReportRow) export.Dataset {
	headers := []string{"student_id", "student_name", "criterion_count", "total_score", "total_max", "percentage"}
	out := make([]map[string]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, map[string]string{
			"student_id":      r.StudentID,
			"student_name":    r.StudentName,
			"criterion_count": fmt.Sprintf("%d", r.CriterionCount),
			"total_score":     fmt.Sprintf("%.2f", r.TotalScore),
			"total_max":       fmt.Sprintf("%.2f", r.TotalMax),
			"percentage":      fmt.Sprintf("%.2f%%", r.Percentage),
		})
	}
	return export.Dataset{Headers: headers, Rows: out}
}
