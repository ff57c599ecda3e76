package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taskhub/models"
)

type MembershipRepository struct {
	DB *gorm.DB
}

// RoleOf returns models.RoleNone when there is no row. A stored value outside
// the known roles is also treated as no membership.
func (r *MembershipRepository) RoleOf(ctx context.Context, userID, teamID uint) (models.Role, error) {
	var rows []models.Membership
	err := r.DB.WithContext(ctx).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return models.RoleNone, err
	}
	if len(rows) == 0 {
		return models.RoleNone, nil
	}
	switch rows[0].Role {
	case models.RoleMember, models.RoleAdmin:
		return rows[0].Role, nil
	}
	return models.RoleNone, nil
}

func (r *MembershipRepository) AddMember(ctx context.Context, userID, teamID uint, role models.Role) error {
	err := r.DB.WithContext(ctx).Omit(clause.Associations).Create(&models.Membership{
		TeamID: teamID,
		UserID: userID,
		Role:   role,
	}).Error
	return duplicate(err, "user is already a member of this team")
}

func (r *MembershipRepository) RemoveMember(ctx context.Context, userID, teamID uint) (bool, error) {
	res := r.DB.WithContext(ctx).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Delete(&models.Membership{})
	return res.RowsAffected > 0, res.Error
}

func (r *MembershipRepository) Members(ctx context.Context, teamID uint) ([]models.MemberView, error) {
	var members []models.MemberView
	err := r.DB.WithContext(ctx).
		Table("memberships AS m").
		Select("m.user_id, u.first_name, u.last_name, u.email, m.role, m.joined_at").
		Joins("JOIN users u ON u.id = m.user_id").
		Where("m.team_id = ?", teamID).
		Order("m.joined_at").
		Scan(&members).Error
	return members, err
}
