package models

import "time"

// JobPosting is an opportunity published to students.
type JobPosting struct {
	ID          string     `db:"id" json:"id"`
	Title       string     `db:"title" json:"title"`
	Company     string     `db:"company" json:"company"`
	Description string     `db:"description" json:"description"`
	ApplyURL    string     `db:"apply_url" json:"apply_url"`
	Deadline    *time.Time `db:"deadline" json:"deadline,omitempty"`
	CreatedBy   string     `db:"created_by" json:"created_by"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// JobPostingFilter scopes posting lists.
type JobPostingFilter struct {
	ActiveOnly bool
	Page       int
	PageSize   int
}
