package models

import "time"

// SessionAnalyticsRecord is the derived per-session analytics row, unique on
// (session_id, analysis_date). Re-running the pipeline for the same date with
// unchanged source rows upserts identical values.
//
// Rate fields are presentation strings ("80.0%", "4.33", "N/A") because the
// spreadsheet and JSON consumers depend on them verbatim. Raw quiz statistics
// are nullable numerics: nil whenever the session has no quiz rows or the max
// possible score is zero.
type SessionAnalyticsRecord struct {
	ID           string    `db:"id" json:"id"`
	SessionID    string    `db:"session_id" json:"session_id"`
	AnalysisDate time.Time `db:"analysis_date" json:"analysis_date"`
	BatchID      string    `db:"batch_id" json:"batch_id"`

	TotalRegistered int    `db:"total_registered" json:"total_registered"`
	PresentCount    int    `db:"present_count" json:"present_count"`
	AttendanceRate  string `db:"attendance_rate" json:"attendance_rate"`

	RespondentCount int    `db:"respondent_count" json:"respondent_count"`
	ResponseRate    string `db:"response_rate" json:"response_rate"`

	RatingCount           int    `db:"rating_count" json:"rating_count"`
	AverageRating         string `db:"average_rating" json:"average_rating"`
	LowRatingsPercentage  string `db:"low_ratings_percentage" json:"low_ratings_percentage"`

	QuizAverage      *float64 `db:"quiz_average" json:"quiz_average"`
	QuizStdDev       *float64 `db:"quiz_std_dev" json:"quiz_std_dev"`
	QuizMin          *float64 `db:"quiz_min" json:"quiz_min"`
	QuizMax          *float64 `db:"quiz_max" json:"quiz_max"`
	QuizPercentage   string   `db:"quiz_percentage" json:"quiz_percentage"`
	QuizAbove90Count *int     `db:"quiz_above_90_count" json:"quiz_above_90_count"`
	QuizBelow40Count *int     `db:"quiz_below_40_count" json:"quiz_below_40_count"`

	Summary   string    `db:"summary" json:"summary"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// AnalysisSourceRows bundles the four fetched row sets for one batch/date.
type AnalysisSourceRows struct {
	Sessions   []Session
	Attendance []AttendanceRecord
	Feedback   []FeedbackResponse
	Quizzes    []QuizScore
}
