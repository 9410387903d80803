package models

import "time"

// FacultyRatingCell is one heatmap cell: a faculty's average extracted rating
// for the sessions held in one ISO week.
type FacultyRatingCell struct {
	FacultyID     string  `json:"faculty_id"`
	Year          int     `json:"year"`
	Week          int     `json:"week"`
	SessionCount  int     `json:"session_count"`
	RatingCount   int     `json:"rating_count"`
	AverageRating float64 `json:"average_rating"`
}

// FacultyRatingRow is a raw (session, answer) pair for one faculty, as
// returned by the repository before extraction and grouping.
type FacultyRatingRow struct {
	SessionID string    `db:"session_id" json:"session_id"`
	StartsAt  time.Time `db:"starts_at" json:"starts_at"`
	Answer    string    `db:"answer" json:"answer"`
}
