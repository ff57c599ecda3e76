package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taskhub/models"
)

type FileRepository struct {
	DB *gorm.DB
}

func (r *FileRepository) Create(ctx context.Context, file *models.TaskFile) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Create(file).Error
}

// ByID loads the attachment including its payload
func (r *FileRepository) ByID(ctx context.Context, id uint) (*models.TaskFile, error) {
	var file models.TaskFile
	if err := r.DB.WithContext(ctx).First(&file, id).Error; err != nil {
		return nil, notFound(err, "file")
	}
	return &file, nil
}

// ByTask lists attachments without loading payloads
func (r *FileRepository) ByTask(ctx context.Context, taskID uint) ([]models.TaskFile, error) {
	var files []models.TaskFile
	err := r.DB.WithContext(ctx).
		Select("id", "created_at", "updated_at", "task_id", "uploaded_by", "name", "size", "mime_type").
		Where("task_id = ?", taskID).
		Order("id").
		Find(&files).Error
	return files, err
}

func (r *FileRepository) Delete(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Delete(&models.TaskFile{}, id).Error
}
