package policy

import (
	"context"
	"fmt"

	"taskhub/errs"
	"taskhub/models"
)

// RoleLookup returns models.RoleNone with a nil error when the user has no
// membership on the team.
type RoleLookup interface {
	RoleOf(ctx context.Context, userID, teamID uint) (models.Role, error)
}

// Authorizer resolves the acting user's role and applies Evaluate.
type Authorizer struct {
	Roles RoleLookup
}

func NewAuthorizer(roles RoleLookup) *Authorizer {
	return &Authorizer{Roles: roles}
}

// Authorize returns the subject's role on success and an errs.ErrForbidden
// wrapped error carrying the rule text on denial.
func (a *Authorizer) Authorize(ctx context.Context, userID uint, action Action, res Resource) (models.Role, error) {
	if res.TeamID == 0 {
		return models.RoleNone, errs.NotFound("team not found")
	}
	role, err := a.Roles.RoleOf(ctx, userID, res.TeamID)
	if err != nil {
		return models.RoleNone, fmt.Errorf("lookup role: %w", err)
	}
	d := Evaluate(action, Subject{UserID: userID, Role: role}, res)
	if !d.Allowed {
		return role, errs.Forbidden("%s", d.Rule)
	}
	return role, nil
}

// ValidateAssignees checks every proposed assignee against the team before
// anything is written. The first non-member fails the whole set.
func (a *Authorizer) ValidateAssignees(ctx context.Context, teamID uint, userIDs []uint) error {
	for _, id := range userIDs {
		role, err := a.Roles.RoleOf(ctx, id, teamID)
		if err != nil {
			return fmt.Errorf("lookup assignee role: %w", err)
		}
		if !role.IsMember() {
			return errs.Forbidden("User %d is not a member of this team", id)
		}
	}
	return nil
}
