package dto

// CreateSessionRequest captures POST /sessions payload.
type CreateSessionRequest struct {
	StartsAt  string `json:"starts_at" binding:"required"`
	FacultyID string `json:"faculty_id" binding:"required"`
	CourseID  string `json:"course_id" binding:"required"`
	SectionID string `json:"section_id" binding:"required"`
	BatchID   string `json:"batch_id" binding:"required"`
	Topic     string `json:"topic"`
	Venue     string `json:"venue"`
}

// UpdateSessionRequest captures administrative edits (reschedule, venue change).
type UpdateSessionRequest struct {
	StartsAt *string `json:"starts_at,omitempty"`
	Topic    *string `json:"topic,omitempty"`
	Venue    *string `json:"venue,omitempty"`
}
