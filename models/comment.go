package models

import (
	"time"

	"gorm.io/gorm"
)

type Comment struct {
	gorm.Model
	TaskID    uint   `gorm:"not null;index" json:"task_id"`
	UserID    uint   `gorm:"not null;index" json:"user_id"`
	Text      string `gorm:"type:text;not null" json:"comment_text"`
	LikeCount int    `gorm:"default:0" json:"like_count"`

	Task Task `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	User User `json:"-"`
}

// CommentLike exists while a user likes a comment
type CommentLike struct {
	CommentID uint      `gorm:"primaryKey" json:"comment_id"`
	UserID    uint      `gorm:"primaryKey" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`

	Comment Comment `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
