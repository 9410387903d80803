package dto

// FeedbackAnswer is one question's answer inside a submission.
type FeedbackAnswer struct {
	QuestionID string `json:"question_id" binding:"required"`
	Answer     string `json:"answer" binding:"required"`
}

// SubmitFeedbackRequest captures POST /sessions/:id/feedback payload.
// Submissions are append-only once accepted.
type SubmitFeedbackRequest struct {
	Answers []FeedbackAnswer `json:"answers" binding:"required,min=1,dive"`
}
