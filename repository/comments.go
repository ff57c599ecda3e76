package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taskhub/models"
)

type CommentRepository struct {
	DB *gorm.DB
}

func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Create(comment).Error
}

func (r *CommentRepository) ByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.DB.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, notFound(err, "comment")
	}
	return &comment, nil
}

func (r *CommentRepository) ByTask(ctx context.Context, taskID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.DB.WithContext(ctx).Where("task_id = ?", taskID).Order("id").Find(&comments).Error
	return comments, err
}

func (r *CommentRepository) Delete(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Delete(&models.Comment{}, id).Error
}

// ToggleLike removes the user's like if present, otherwise adds it, and keeps
// the cached like count in step. It returns the new state and count.
func (r *CommentRepository) ToggleLike(ctx context.Context, commentID, userID uint) (bool, int, error) {
	var liked bool
	var count int

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("comment_id = ? AND user_id = ?", commentID, userID).Delete(&models.CommentLike{})
		if res.Error != nil {
			return res.Error
		}

		delta := -1
		if res.RowsAffected == 0 {
			like := models.CommentLike{CommentID: commentID, UserID: userID}
			if err := tx.Omit(clause.Associations).Create(&like).Error; err != nil {
				return err
			}
			liked = true
			delta = 1
		}

		if err := tx.Model(&models.Comment{}).
			Where("id = ?", commentID).
			Update("like_count", gorm.Expr("GREATEST(like_count + ?, 0)", delta)).Error; err != nil {
			return err
		}

		return tx.Model(&models.Comment{}).
			Where("id = ?", commentID).
			Select("like_count").
			Scan(&count).Error
	})
	return liked, count, err
}
