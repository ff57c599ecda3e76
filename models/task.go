package models

import (
	"time"

	"gorm.io/gorm"
)

type TaskStatus int

const (
	StatusTodo       TaskStatus = 0
	StatusInProgress TaskStatus = 1
	StatusDone       TaskStatus = 2
)

func (s TaskStatus) Valid() bool {
	return s >= StatusTodo && s <= StatusDone
}

func (s TaskStatus) Label() string {
	switch s {
	case StatusDone:
		return "Completed"
	case StatusInProgress:
		return "In Progress"
	default:
		return "To Do"
	}
}

const DefaultPriority = 1

// Task is a unit of work inside a project
type Task struct {
	gorm.Model
	Title       string     `gorm:"not null" json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `gorm:"type:date;index" json:"due_date"`
	Priority    int        `gorm:"default:1" json:"priority"`
	Status      TaskStatus `gorm:"default:0;index" json:"status"`
	ProjectID   uint       `gorm:"not null;index" json:"project_id"`
	CreatedBy   uint       `json:"create_by"`

	// Relations
	Project     Project      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Assignments []Assignment `gorm:"foreignKey:TaskID" json:"-"`
}

// Assignment links a user to a task
type Assignment struct {
	TaskID     uint      `gorm:"primaryKey" json:"task_id"`
	UserID     uint      `gorm:"primaryKey;index" json:"user_id"`
	AssignedAt time.Time `gorm:"autoCreateTime" json:"assigned_at"`

	Task Task `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	User User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// TaskDetail is a task with its assignee ids resolved
type TaskDetail struct {
	Task
	AssigneeIDs []uint `json:"assigned_user_ids"`
}
