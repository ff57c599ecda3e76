package models

import "gorm.io/gorm"

// TaskFile is an attachment stored inline with its metadata
type TaskFile struct {
	gorm.Model
	TaskID     uint   `gorm:"not null;index" json:"task_id"`
	UploadedBy uint   `gorm:"not null" json:"uploaded_by"`
	Name       string `gorm:"not null" json:"file_name"`
	Size       int64  `json:"file_size"`
	MimeType   string `json:"mime_type"`
	Data       []byte `gorm:"type:bytea" json:"-"`

	Task Task `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
