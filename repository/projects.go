package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taskhub/models"
)

type ProjectRepository struct {
	DB *gorm.DB
}

// CreateWithParticipant inserts the project and records its creator as a participant
func (r *ProjectRepository) CreateWithParticipant(ctx context.Context, project *models.Project) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(project).Error; err != nil {
			return duplicate(err, "project url %q is already taken", project.URL)
		}
		p := models.Participation{ProjectID: project.ID, UserID: project.CreatedBy}
		if err := tx.Omit(clause.Associations).Create(&p).Error; err != nil {
			return fmt.Errorf("add project creator: %w", err)
		}
		return nil
	})
}

func (r *ProjectRepository) ByID(ctx context.Context, id uint) (*models.Project, error) {
	var project models.Project
	if err := r.DB.WithContext(ctx).First(&project, id).Error; err != nil {
		return nil, notFound(err, "project")
	}
	return &project, nil
}

func (r *ProjectRepository) ByURL(ctx context.Context, url string) (*models.Project, error) {
	var project models.Project
	if err := r.DB.WithContext(ctx).Where("url = ?", url).First(&project).Error; err != nil {
		return nil, notFound(err, "project")
	}
	return &project, nil
}

func (r *ProjectRepository) ByTeam(ctx context.Context, teamID uint) ([]models.Project, error) {
	var projects []models.Project
	err := r.DB.WithContext(ctx).Where("team_id = ?", teamID).Order("id").Find(&projects).Error
	return projects, err
}

func (r *ProjectRepository) Delete(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Delete(&models.Project{}, id).Error
}

func (r *ProjectRepository) AddParticipant(ctx context.Context, projectID, userID uint) error {
	err := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Omit(clause.Associations).
		Create(&models.Participation{ProjectID: projectID, UserID: userID}).Error
	return err
}

func (r *ProjectRepository) RemoveParticipant(ctx context.Context, projectID, userID uint) (bool, error) {
	res := r.DB.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&models.Participation{})
	return res.RowsAffected > 0, res.Error
}

func (r *ProjectRepository) Participants(ctx context.Context, projectID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.WithContext(ctx).
		Model(&models.Participation{}).
		Where("project_id = ?", projectID).
		Order("joined_at").
		Pluck("user_id", &ids).Error
	return ids, err
}
