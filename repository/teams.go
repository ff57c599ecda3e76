package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taskhub/models"
)

type TeamRepository struct {
	DB *gorm.DB
}

// CreateWithOwner inserts the team and makes its creator an admin in one transaction
func (r *TeamRepository) CreateWithOwner(ctx context.Context, team *models.Team) error {
	tx := r.DB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}

	if err := tx.Omit(clause.Associations).Create(team).Error; err != nil {
		tx.Rollback()
		return duplicate(err, "team url %q is already taken", team.URL)
	}

	owner := models.Membership{TeamID: team.ID, UserID: team.CreatedBy, Role: models.RoleAdmin}
	if err := tx.Omit(clause.Associations).Create(&owner).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("add team owner: %w", err)
	}

	return tx.Commit().Error
}

func (r *TeamRepository) ByID(ctx context.Context, id uint) (*models.Team, error) {
	var team models.Team
	if err := r.DB.WithContext(ctx).First(&team, id).Error; err != nil {
		return nil, notFound(err, "team")
	}
	return &team, nil
}

func (r *TeamRepository) ByURL(ctx context.Context, url string) (*models.Team, error) {
	var team models.Team
	if err := r.DB.WithContext(ctx).Where("url = ?", url).First(&team).Error; err != nil {
		return nil, notFound(err, "team")
	}
	return &team, nil
}

func (r *TeamRepository) Rename(ctx context.Context, id uint, name string) error {
	return r.DB.WithContext(ctx).Model(&models.Team{}).Where("id = ?", id).Update("name", name).Error
}

func (r *TeamRepository) Delete(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Delete(&models.Team{}, id).Error
}

// ForUser lists the teams the user belongs to along with their role
func (r *TeamRepository) ForUser(ctx context.Context, userID uint) ([]models.TeamWithRole, error) {
	var teams []models.TeamWithRole
	err := r.DB.WithContext(ctx).
		Table("teams AS t").
		Select("t.*, m.role").
		Joins("JOIN memberships m ON m.team_id = t.id").
		Where("m.user_id = ? AND t.deleted_at IS NULL", userID).
		Order("t.id").
		Scan(&teams).Error
	return teams, err
}
