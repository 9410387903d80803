package models

import "time"

// Evaluation records one criterion score for a student in a term.
type Evaluation struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"student_id"`
	Term      string    `db:"term" json:"term"`
	Criterion string    `db:"criterion" json:"criterion"`
	Score     float64   `db:"score" json:"score"`
	MaxScore  float64   `db:"max_score" json:"max_score"`
	Remarks   string    `db:"remarks" json:"remarks"`
	CreatedBy string    `db:"created_by" json:"created_by"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// EvaluationReportRow aggregates a student's evaluation scores for a term.
type EvaluationReportRow struct {
	StudentID      string  `db:"student_id" json:"student_id"`
	StudentName    string  `db:"student_name" json:"student_name"`
	CriterionCount int     `db:"criterion_count" json:"criterion_count"`
	TotalScore     float64 `db:"total_score" json:"total_score"`
	TotalMax       float64 `db:"total_max" json:"total_max"`
	Percentage     float64 `db:"percentage" json:"percentage"`
}
