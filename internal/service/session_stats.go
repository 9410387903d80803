package service

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/campushq/campus-admin-api/internal/models"
)

// naValue is the sentinel used for string-typed rate fields when the
// denominator is empty. Numeric quiz statistics use nil instead.
const naValue = "N/A"

// ratingLabels maps the five fixed English answer labels onto the 1-5 scale.
var ratingLabels = map[string]float64{
	"excellent": 5,
	"very good": 4,
	"good":      3,
	"fair":      2,
	"poor":      1,
}

// ExtractRating parses a feedback answer into a 1-5 rating. Numeric answers
// are rounded to the nearest integer and accepted only within [1,5]; label
// answers are matched case-insensitively. Anything else is excluded.
func ExtractRating(answer string) (float64, bool) {
	trimmed := strings.TrimSpace(answer)
	if trimmed == "" {
		return 0, false
	}
	if v, ok := ratingLabels[strings.ToLower(trimmed)]; ok {
		return v, true
	}
	parsed, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, false
	}
	rounded := math.Round(parsed)
	if rounded < 1 || rounded > 5 {
		return 0, false
	}
	return rounded, true
}

// SessionStatistics holds the computed statistics for one session.
//
// Rate fields are presentation strings because the spreadsheet and JSON
// consumers expect them verbatim; raw quiz statistics stay numeric and are
// nil when the session has no usable quiz data.
type SessionStatistics struct {
	TotalRegistered int
	PresentCount    int
	AttendanceRate  string

	RespondentCount int
	ResponseRate    string

	RatingCount          int
	AverageRating        string
	LowRatingsPercentage string

	QuizAverage      *float64
	QuizStdDev       *float64
	QuizMin          *float64
	QuizMax          *float64
	QuizPercentage   string
	QuizAbove90Count *int
	QuizBelow40Count *int

	// Comments holds the free-text feedback answers, in row order. They feed
	// the narrative prompt and are not persisted.
	Comments []string
}

// ComputeSessionStatistics derives all per-session statistics from the
// session's attendance, feedback and quiz rows. Empty row sets are valid.
func ComputeSessionStatistics(attendance []models.AttendanceRecord, feedback []models.FeedbackResponse, quizzes []models.QuizScore, ratingQuestionID string) SessionStatistics {
	stats := SessionStatistics{}

	stats.TotalRegistered = len(attendance)
	for _, row := range attendance {
		if row.Present {
			stats.PresentCount++
		}
	}
	if stats.TotalRegistered == 0 {
		stats.AttendanceRate = naValue
	} else {
		stats.AttendanceRate = formatPercent1(float64(stats.PresentCount) / float64(stats.TotalRegistered) * 100)
	}

	respondents := make(map[string]struct{})
	var ratings []float64
	for _, row := range feedback {
		respondents[row.StudentID] = struct{}{}
		if row.QuestionID == ratingQuestionID {
			if rating, ok := ExtractRating(row.Answer); ok {
				ratings = append(ratings, rating)
			}
			continue
		}
		if comment := strings.TrimSpace(row.Answer); comment != "" {
			stats.Comments = append(stats.Comments, comment)
		}
	}
	stats.RespondentCount = len(respondents)
	if stats.PresentCount == 0 {
		stats.ResponseRate = naValue
	} else {
		stats.ResponseRate = formatPercent1(float64(stats.RespondentCount) / float64(stats.PresentCount) * 100)
	}

	stats.RatingCount = len(ratings)
	if len(ratings) == 0 {
		stats.AverageRating = naValue
		stats.LowRatingsPercentage = naValue
	} else {
		var sum float64
		low := 0
		for _, rating := range ratings {
			sum += rating
			if rating < 4 {
				low++
			}
		}
		stats.AverageRating = formatNumber2(sum / float64(len(ratings)))
		stats.LowRatingsPercentage = formatPercent1(float64(low) / float64(len(ratings)) * 100)
	}

	applyQuizStatistics(&stats, quizzes)
	return stats
}

// applyQuizStatistics fills the quiz fields. Every quiz statistic is nil and
// the percentage is "N/A" when there are no rows or the max possible score
// is zero.
func applyQuizStatistics(stats *SessionStatistics, quizzes []models.QuizScore) {
	stats.QuizPercentage = naValue
	if len(quizzes) == 0 {
		return
	}
	maxPossible := quizzes[0].MaxScore
	if maxPossible <= 0 {
		return
	}

	var sum float64
	minScore := quizzes[0].Score
	maxScore := quizzes[0].Score
	above90 := 0
	below40 := 0
	for _, q := range quizzes {
		sum += q.Score
		if q.Score < minScore {
			minScore = q.Score
		}
		if q.Score > maxScore {
			maxScore = q.Score
		}
		if q.Score >= 0.9*maxPossible {
			above90++
		}
		if q.Score < 0.4*maxPossible {
			below40++
		}
	}
	mean := sum / float64(len(quizzes))

	var variance float64
	for _, q := range quizzes {
		diff := q.Score - mean
		variance += diff * diff
	}
	variance /= float64(len(quizzes))

	stats.QuizAverage = ptrFloat(round2(mean))
	stats.QuizStdDev = ptrFloat(round2(math.Sqrt(variance)))
	stats.QuizMin = ptrFloat(round2(minScore))
	stats.QuizMax = ptrFloat(round2(maxScore))
	stats.QuizPercentage = fmt.Sprintf("%.2f%%", round2(mean/maxPossible*100))
	stats.QuizAbove90Count = ptrInt(above90)
	stats.QuizBelow40Count = ptrInt(below40)
}

func formatPercent1(v float64) string {
	return fmt.Sprintf("%.1f%%", math.Round(v*10)/10)
}

func formatNumber2(v float64) string {
	return fmt.Sprintf("%.2f", round2(v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func ptrFloat(v float64) *float64 {
	return &v
}

func ptrInt(v int) *int {
	return &v
}
