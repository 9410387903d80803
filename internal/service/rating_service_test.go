package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campushq/campus-admin-api/internal/models"
)

type fakeRatingRepo struct {
	rows []models.FacultyRatingRow
}

func (f *fakeRatingRepo) RatingRows(_ context.Context, _, _ string, _, _ time.Time) ([]models.FacultyRatingRow, error) {
	return f.rows, nil
}

func TestRatingServiceHeatmap(t *testing.T) {
	// 2026-01-05 is Monday of ISO week 2; 2026-01-12 starts week 3.
	week2Mon := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	week2Wed := time.Date(2026, 1, 7, 9, 0, 0, 0, time.UTC)
	week3Mon := time.Date(2026, 1, 12, 9, 0, 0, 0, time.UTC)

	repo := &fakeRatingRepo{rows: []models.FacultyRatingRow{
		{SessionID: "sess-1", StartsAt: week2Mon, Answer: "5"},
		{SessionID: "sess-1", StartsAt: week2Mon, Answer: "4"},
		{SessionID: "sess-2", StartsAt: week2Wed, Answer: "Good"},
		{SessionID: "sess-2", StartsAt: week2Wed, Answer: "no comment"},
		{SessionID: "sess-3", StartsAt: week3Mon, Answer: "Excellent"},
	}}
	svc := NewRatingService(repo, nil, "q-rating", time.Minute, zap.NewNop())

	cells, cacheHit, err := svc.Heatmap(context.Background(), "fac-1",
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, cacheHit)
	require.Len(t, cells, 2)

	first := cells[0]
	assert.Equal(t, 2026, first.Year)
	assert.Equal(t, 2, first.Week)
	assert.Equal(t, 2, first.SessionCount)
	// "no comment" is not a rating: 3 ratings (5, 4, Good=3) average 4.0.
	assert.Equal(t, 3, first.RatingCount)
	assert.Equal(t, 4.0, first.AverageRating)

	second := cells[1]
	assert.Equal(t, 3, second.Week)
	assert.Equal(t, 1, second.SessionCount)
	assert.Equal(t, 5.0, second.AverageRating)
}

func TestRatingServiceHeatmapEmptyRange(t *testing.T) {
	svc := NewRatingService(&fakeRatingRepo{}, nil, "q-rating", time.Minute, zap.NewNop())

	date := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	_, _, err := svc.Heatmap(context.Background(), "fac-1", date, date)
	assert.Error(t, err)
}

func TestRatingServiceHeatmapNoRows(t *testing.T) {
	svc := NewRatingService(&fakeRatingRepo{}, nil, "q-rating", time.Minute, zap.NewNop())

	cells, _, err := svc.Heatmap(context.Background(), "fac-1",
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, cells)
}
