package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushq/campus-admin-api/internal/models"
)

func TestExtractRating(t *testing.T) {
	tests := []struct {
		answer   string
		expected float64
		accepted bool
	}{
		{"5", 5, true},
		{"4", 4, true},
		{"1", 1, true},
		{"4.4", 4, true},
		{"4.6", 5, true},
		{"0.4", 0, false},
		{"5.6", 0, false},
		{"0", 0, false},
		{"6", 0, false},
		{"-3", 0, false},
		{"Excellent", 5, true},
		{"excellent", 5, true},
		{"Very Good", 4, true},
		{"VERY GOOD", 4, true},
		{"Good", 3, true},
		{"Fair", 2, true},
		{"Poor", 1, true},
		{"  Good  ", 3, true},
		{"great lecture", 0, false},
		{"", 0, false},
		{"n/a", 0, false},
	}

	for _, tc := range tests {
		t.Run(tc.answer, func(t *testing.T) {
			rating, ok := ExtractRating(tc.answer)
			assert.Equal(t, tc.accepted, ok)
			if tc.accepted {
				assert.Equal(t, tc.expected, rating)
			}
		})
	}
}

func TestComputeSessionStatisticsWorkedExample(t *testing.T) {
	attendance := make([]models.AttendanceRecord, 0, 10)
	for i := 0; i < 10; i++ {
		attendance = append(attendance, models.AttendanceRecord{
			SessionID: "sess-1",
			StudentID: fmt.Sprintf("stu-%d", i),
			Present:   i < 8,
		})
	}

	answers := []string{"5", "5", "4", "3", "Excellent", "Very Good"}
	feedback := make([]models.FeedbackResponse, 0, len(answers))
	for i, answer := range answers {
		feedback = append(feedback, models.FeedbackResponse{
			SessionID:  "sess-1",
			StudentID:  fmt.Sprintf("stu-%d", i),
			QuestionID: "q-rating",
			Answer:     answer,
		})
	}

	stats := ComputeSessionStatistics(attendance, feedback, nil, "q-rating")

	assert.Equal(t, 10, stats.TotalRegistered)
	assert.Equal(t, 8, stats.PresentCount)
	assert.Equal(t, "80.0%", stats.AttendanceRate)
	assert.Equal(t, 6, stats.RespondentCount)
	assert.Equal(t, "75.0%", stats.ResponseRate)
	assert.Equal(t, 6, stats.RatingCount)
	assert.Equal(t, "4.33", stats.AverageRating)
	assert.Equal(t, "16.7%", stats.LowRatingsPercentage)
	assert.Nil(t, stats.QuizAverage)
	assert.Equal(t, "N/A", stats.QuizPercentage)
}

func TestComputeSessionStatisticsQuiz(t *testing.T) {
	scores := []float64{100, 80, 60, 40}
	quizzes := make([]models.QuizScore, 0, len(scores))
	for i, score := range scores {
		quizzes = append(quizzes, models.QuizScore{
			SessionID: "sess-1",
			StudentID: fmt.Sprintf("stu-%d", i),
			Score:     score,
			MaxScore:  100,
		})
	}

	stats := ComputeSessionStatistics(nil, nil, quizzes, "q-rating")

	require.NotNil(t, stats.QuizAverage)
	assert.Equal(t, 70.0, *stats.QuizAverage)
	require.NotNil(t, stats.QuizStdDev)
	assert.Equal(t, 22.36, *stats.QuizStdDev)
	require.NotNil(t, stats.QuizMin)
	assert.Equal(t, 40.0, *stats.QuizMin)
	require.NotNil(t, stats.QuizMax)
	assert.Equal(t, 100.0, *stats.QuizMax)
	assert.Equal(t, "70.00%", stats.QuizPercentage)
	require.NotNil(t, stats.QuizAbove90Count)
	assert.Equal(t, 1, *stats.QuizAbove90Count)
	// 40 out of 100 sits exactly on the 40% boundary and does not count.
	require.NotNil(t, stats.QuizBelow40Count)
	assert.Equal(t, 0, *stats.QuizBelow40Count)
}

func TestComputeSessionStatisticsQuizBoundaries(t *testing.T) {
	quizzes := []models.QuizScore{
		{SessionID: "sess-1", StudentID: "stu-0", Score: 45, MaxScore: 50},  // exactly 90%
		{SessionID: "sess-1", StudentID: "stu-1", Score: 19.9, MaxScore: 50}, // just below 40%
		{SessionID: "sess-1", StudentID: "stu-2", Score: 20, MaxScore: 50},   // exactly 40%
	}

	stats := ComputeSessionStatistics(nil, nil, quizzes, "q-rating")

	require.NotNil(t, stats.QuizAbove90Count)
	assert.Equal(t, 1, *stats.QuizAbove90Count)
	require.NotNil(t, stats.QuizBelow40Count)
	assert.Equal(t, 1, *stats.QuizBelow40Count)
}

func TestComputeSessionStatisticsEmptyInputs(t *testing.T) {
	stats := ComputeSessionStatistics(nil, nil, nil, "q-rating")

	assert.Equal(t, 0, stats.TotalRegistered)
	assert.Equal(t, "N/A", stats.AttendanceRate)
	assert.Equal(t, "N/A", stats.ResponseRate)
	assert.Equal(t, "N/A", stats.AverageRating)
	assert.Equal(t, "N/A", stats.LowRatingsPercentage)
	assert.Nil(t, stats.QuizAverage)
	assert.Nil(t, stats.QuizStdDev)
	assert.Nil(t, stats.QuizMin)
	assert.Nil(t, stats.QuizMax)
	assert.Nil(t, stats.QuizAbove90Count)
	assert.Nil(t, stats.QuizBelow40Count)
	assert.Equal(t, "N/A", stats.QuizPercentage)
}

func TestComputeSessionStatisticsZeroMaxScore(t *testing.T) {
	quizzes := []models.QuizScore{
		{SessionID: "sess-1", StudentID: "stu-0", Score: 0, MaxScore: 0},
	}

	stats := ComputeSessionStatistics(nil, nil, quizzes, "q-rating")

	assert.Nil(t, stats.QuizAverage)
	assert.Equal(t, "N/A", stats.QuizPercentage)
}

func TestComputeSessionStatisticsIgnoresOtherQuestions(t *testing.T) {
	feedback := []models.FeedbackResponse{
		{SessionID: "sess-1", StudentID: "stu-0", QuestionID: "q-rating", Answer: "5"},
		{SessionID: "sess-1", StudentID: "stu-0", QuestionID: "q-comments", Answer: "3"},
		{SessionID: "sess-1", StudentID: "stu-1", QuestionID: "q-comments", Answer: "loved the demos"},
	}
	attendance := []models.AttendanceRecord{
		{SessionID: "sess-1", StudentID: "stu-0", Present: true},
		{SessionID: "sess-1", StudentID: "stu-1", Present: true},
	}

	stats := ComputeSessionStatistics(attendance, feedback, nil, "q-rating")

	// stu-1 responded to a non-rating question: counts as a respondent but
	// contributes no rating.
	assert.Equal(t, 2, stats.RespondentCount)
	assert.Equal(t, "100.0%", stats.ResponseRate)
	assert.Equal(t, 1, stats.RatingCount)
	assert.Equal(t, "5.00", stats.AverageRating)
	assert.Equal(t, "0.0%", stats.LowRatingsPercentage)
}

func TestComputeSessionStatisticsCollectsComments(t *testing.T) {
	feedback := []models.FeedbackResponse{
		{SessionID: "sess-1", StudentID: "stu-0", QuestionID: "q-rating", Answer: "5"},
		{SessionID: "sess-1", StudentID: "stu-0", QuestionID: "q-comments", Answer: "  loved the demos  "},
		{SessionID: "sess-1", StudentID: "stu-1", QuestionID: "q-comments", Answer: "too fast"},
		{SessionID: "sess-1", StudentID: "stu-2", QuestionID: "q-comments", Answer: "   "},
	}

	stats := ComputeSessionStatistics(nil, feedback, nil, "q-rating")

	// Rating answers and blank answers stay out; the rest keep row order.
	assert.Equal(t, []string{"loved the demos", "too fast"}, stats.Comments)
}
