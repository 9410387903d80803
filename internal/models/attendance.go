package models

import "time"

// AttendanceRecord is one row per (session, student). Admins may flip the flag.
type AttendanceRecord struct {
	ID        string    `db:"id" json:"id"`
	SessionID string    `db:"session_id" json:"session_id"`
	StudentID string    `db:"student_id" json:"student_id"`
	Present   bool      `db:"present" json:"present"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// StudentAttendanceSummary aggregates a student's attendance over a range.
type StudentAttendanceSummary struct {
	StudentID    string  `db:"student_id" json:"student_id"`
	SessionCount int     `db:"session_count" json:"session_count"`
	PresentCount int     `db:"present_count" json:"present_count"`
	Percentage   float64 `db:"percentage" json:"percentage"`
}
