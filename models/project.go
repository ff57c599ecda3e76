package models

import (
	"time"

	"gorm.io/gorm"
)

// Project belongs to a team and inherits the team's membership for access
type Project struct {
	gorm.Model
	Name        string `gorm:"not null" json:"project_name"`
	Description string `json:"description"`
	URL         string `gorm:"uniqueIndex;not null" json:"project_url"`
	TeamID      uint   `gorm:"not null;index" json:"team_id"`
	CreatedBy   uint   `gorm:"not null" json:"create_by"`

	// Relations
	Team  Team   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Tasks []Task `gorm:"foreignKey:ProjectID" json:"tasks,omitempty"`
}

// Participation records who works on a project. It carries no access rights.
type Participation struct {
	ProjectID uint      `gorm:"primaryKey" json:"project_id"`
	UserID    uint      `gorm:"primaryKey;index" json:"user_id"`
	JoinedAt  time.Time `gorm:"autoCreateTime" json:"joined_at"`

	Project Project `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	User    User    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
