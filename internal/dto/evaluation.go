package dto

// UpsertEvaluationRequest captures POST /evaluations payload.
type UpsertEvaluationRequest struct {
	StudentID string  `json:"student_id" binding:"required"`
	Term      string  `json:"term" binding:"required"`
	Criterion string  `json:"criterion" binding:"required"`
	Score     float64 `json:"score" binding:"min=0"`
	MaxScore  float64 `json:"max_score" binding:"required,gt=0"`
	Remarks   string  `json:"remarks"`
}
