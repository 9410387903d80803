package dto

// RunAnalysisRequest captures POST /analysis/feedback/:batchId payload.
type RunAnalysisRequest struct {
	Date string `json:"date" binding:"required,datetime=2006-01-02"`
}
