package dto

// CreateJobPostingRequest captures POST /job-postings payload.
type CreateJobPostingRequest struct {
	Title       string  `json:"title" binding:"required"`
	Company     string  `json:"company" binding:"required"`
	Description string  `json:"description"`
	ApplyURL    string  `json:"apply_url" binding:"omitempty,url"`
	Deadline    *string `json:"deadline,omitempty"`
}

// UpdateJobPostingRequest captures PATCH /job-postings/:id payload.
type UpdateJobPostingRequest struct {
	Title       *string `json:"title,omitempty"`
	Company     *string `json:"company,omitempty"`
	Description *string `json:"description,omitempty"`
	ApplyURL    *string `json:"apply_url,omitempty"`
	Deadline    *string `json:"deadline,omitempty"`
}
