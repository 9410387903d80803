package models

import "time"

// FeedbackResponse is an append-only answer submitted by a student for a
// session question. Rating answers arrive either as numeric strings ("1".."5")
// or as one of five fixed English labels.
type FeedbackResponse struct {
	ID         string    `db:"id" json:"id"`
	SessionID  string    `db:"session_id" json:"session_id"`
	StudentID  string    `db:"student_id" json:"student_id"`
	QuestionID string    `db:"question_id" json:"question_id"`
	Answer     string    `db:"answer" json:"answer"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
