package dto

// QuizScoreEntry is one student's score inside a bulk upsert.
type QuizScoreEntry struct {
	StudentID string  `json:"student_id" binding:"required"`
	Score     float64 `json:"score" binding:"min=0"`
	MaxScore  float64 `json:"max_score" binding:"required,gt=0"`
}

// UpsertQuizScoresRequest captures POST /sessions/:id/quiz-scores payload.
type UpsertQuizScoresRequest struct {
	Scores []QuizScoreEntry `json:"scores" binding:"required,min=1,dive"`
}
