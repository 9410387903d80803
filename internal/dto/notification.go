package dto

// CreateNotificationRequest captures POST /notifications payload.
type CreateNotificationRequest struct {
	Title    string  `json:"title" binding:"required"`
	Body     string  `json:"body" binding:"required"`
	Audience string  `json:"audience" binding:"required,oneof=ALL BATCH FACULTY STUDENTS"`
	BatchID  *string `json:"batch_id,omitempty"`
}
