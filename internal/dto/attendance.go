package dto

// AttendanceEntry is one student's flag inside a bulk upsert.
type AttendanceEntry struct {
	StudentID string `json:"student_id" binding:"required"`
	Present   bool   `json:"present"`
}

// BulkAttendanceRequest captures POST /sessions/:id/attendance payload.
type BulkAttendanceRequest struct {
	Records []AttendanceEntry `json:"records" binding:"required,min=1,dive"`
}
