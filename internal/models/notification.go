package models

import "time"

// NotificationAudience selects who receives a notification.
type NotificationAudience string

const (
	AudienceAll      NotificationAudience = "ALL"
	AudienceBatch    NotificationAudience = "BATCH"
	AudienceFaculty  NotificationAudience = "FACULTY"
	AudienceStudents NotificationAudience = "STUDENTS"
)

// Notification is an announcement created by an admin and fanned out to the
// selected audience as per-user delivery rows.
type Notification struct {
	ID        string               `db:"id" json:"id"`
	Title     string               `db:"title" json:"title"`
	Body      string               `db:"body" json:"body"`
	Audience  NotificationAudience `db:"audience" json:"audience"`
	BatchID   *string              `db:"batch_id" json:"batch_id,omitempty"`
	CreatedBy string               `db:"created_by" json:"created_by"`
	CreatedAt time.Time            `db:"created_at" json:"created_at"`
}

// NotificationDelivery links a notification to one recipient.
type NotificationDelivery struct {
	ID             string     `db:"id" json:"id"`
	NotificationID string     `db:"notification_id" json:"notification_id"`
	UserID         string     `db:"user_id" json:"user_id"`
	ReadAt         *time.Time `db:"read_at" json:"read_at,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

// UserNotification is a delivery joined with its notification content.
type UserNotification struct {
	DeliveryID string     `db:"delivery_id" json:"delivery_id"`
	Title      string     `db:"title" json:"title"`
	Body       string     `db:"body" json:"body"`
	ReadAt     *time.Time `db:"read_at" json:"read_at,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}
