package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/campushq/campus-admin-api/internal/models"
	appErrors "github.com/campushq/campus-admin-api/pkg/errors"
)

type ratingRepository interface {
	RatingRows(ctx context.Context, facultyID, ratingQuestionID string, from, to time.Time) ([]models.FacultyRatingRow, error)
}

// RatingService builds the faculty rating heatmap: average extracted rating
// per ISO week, from the raw rating-question answers.
type RatingService struct {
	repo           ratingRepository
	cache          *CacheService
	ratingQuestion string
	cacheTTL       time.Duration
	logger         *zap.Logger
}

func NewRatingService(repo ratingRepository, cache *CacheService, ratingQuestion string, cacheTTL time.Duration, logger *zap.Logger) *RatingService {
	return &RatingService{
		repo:           repo,
		cache:          cache,
		ratingQuestion: ratingQuestion,
		cacheTTL:       cacheTTL,
		logger:         logger,
	}
}

// Heatmap returns one cell per ISO week in [from, to) holding the faculty's
// average rating. Weeks without sessions produce no cell. The bool reports a
// cache hit.
func (s *RatingService) Heatmap(ctx context.Context, facultyID string, from, to time.Time) ([]models.FacultyRatingCell, bool, error) {
	if !to.After(from) {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "date range is empty")
	}

	cacheKey := fmt.Sprintf("ratings:heatmap:%s:%s:%s", facultyID, from.Format("2006-01-02"), to.Format("2006-01-02"))
	if s.cache.Enabled() {
		var cached []models.FacultyRatingCell
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return cached, true, nil
		}
	}

	rows, err := s.repo.RatingRows(ctx, facultyID, s.ratingQuestion, from, to)
	if err != nil {
		return nil, false, err
	}
	cells := buildHeatmapCells(facultyID, rows)

	if s.cache.Enabled() {
		if err := s.cache.Set(ctx, cacheKey, cells, s.cacheTTL); err != nil {
			s.logger.Warn("heatmap cache set failed", zap.Error(err))
		}
	}
	return cells, false, nil
}

type weekKey struct {
	year int
	week int
}

// buildHeatmapCells groups rows into ISO weeks and averages the extracted
// ratings. Rows whose answers do not parse as ratings still count the session
// but contribute no rating.
func buildHeatmapCells(facultyID string, rows []models.FacultyRatingRow) []models.FacultyRatingCell {
	type accumulator struct {
		sessions map[string]struct{}
		sum      float64
		count    int
	}
	weeks := make(map[weekKey]*accumulator)

	for _, row := range rows {
		year, week := row.StartsAt.ISOWeek()
		key := weekKey{year: year, week: week}
		acc, ok := weeks[key]
		if !ok {
			acc = &accumulator{sessions: make(map[string]struct{})}
			weeks[key] = acc
		}
		acc.sessions[row.SessionID] = struct{}{}
		if rating, ok := ExtractRating(row.Answer); ok {
			acc.sum += rating
			acc.count++
		}
	}

	cells := make([]models.FacultyRatingCell, 0, len(weeks))
	for key, acc := range weeks {
		cell := models.FacultyRatingCell{
			FacultyID:    facultyID,
			Year:         key.year,
			Week:         key.week,
			SessionCount: len(acc.sessions),
			RatingCount:  acc.count,
		}
		if acc.count > 0 {
			cell.AverageRating = round2(acc.sum / float64(acc.count))
		}
		cells = append(cells, cell)
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Year != cells[j].Year {
			return cells[i].Year < cells[j].Year
		}
		return cells[i].Week < cells[j].Week
	})
	return cells
}
