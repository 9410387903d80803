package models

import "time"

// Session represents a scheduled teaching session. Rows are immutable once
// created except for administrative edits (reschedule, venue change).
type Session struct {
	ID        string    `db:"id" json:"id"`
	StartsAt  time.Time `db:"starts_at" json:"starts_at"`
	FacultyID string    `db:"faculty_id" json:"faculty_id"`
	CourseID  string    `db:"course_id" json:"course_id"`
	SectionID string    `db:"section_id" json:"section_id"`
	BatchID   string    `db:"batch_id" json:"batch_id"`
	Topic     string    `db:"topic" json:"topic"`
	Venue     string    `db:"venue" json:"venue"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// SessionFilter captures filtering criteria for listing sessions.
type SessionFilter struct {
	BatchID   string
	FacultyID string
	DateFrom  *time.Time
	DateTo    *time.Time
	Page      int
	PageSize  int
}
