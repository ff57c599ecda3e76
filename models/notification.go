package models

import "time"

// Notification titles. They double as the kind in dedup keys.
const (
	TitleTaskAssigned    = "New Task Assigned"
	TitleTaskCompleted   = "Task Completed"
	TitleAddedToTeam     = "Added to Team"
	TitleDeadlineReached = "Task Deadline Reached"
	TitleDueSoon         = "Task Due Soon"
)

// Notification is an append-only message addressed to one user
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"notification_id"`
	Title     string    `gorm:"not null;index:idx_notifications_title_task" json:"title"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	TaskID    *uint     `gorm:"index:idx_notifications_title_task" json:"task_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	DedupKey  *string   `gorm:"uniqueIndex" json:"-"`
	CreatedAt time.Time `gorm:"index" json:"create_at"`
}
