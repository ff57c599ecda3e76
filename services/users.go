package services

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"taskhub/errs"
	"taskhub/models"
	"taskhub/utils"
)

type UpdateNameInput struct {
	FirstName string `json:"first_name" validate:"required,max=50"`
	LastName  string `json:"last_name" validate:"required,max=50"`
}

type SetPasswordInput struct {
	Password string `json:"password" validate:"required,min=8"`
}

type UserService struct {
	Users UserStore
	Log   *logrus.Entry
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	return s.Users.ByID(ctx, id)
}

func requireSelf(userID, targetID uint) error {
	if userID == 0 || userID != targetID {
		return errs.Forbidden("you can only change your own account")
	}
	return nil
}

func (s *UserService) UpdateName(ctx context.Context, userID, targetID uint, in UpdateNameInput) (*models.User, error) {
	if err := requireSelf(userID, targetID); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	first, last := strings.TrimSpace(in.FirstName), strings.TrimSpace(in.LastName)
	if err := s.Users.Update(ctx, targetID, map[string]interface{}{"first_name": first, "last_name": last}); err != nil {
		return nil, err
	}
	return s.Users.ByID(ctx, targetID)
}

// SetPassword replaces the password and clears the setup flag left by Google signup
func (s *UserService) SetPassword(ctx context.Context, userID, targetID uint, in SetPasswordInput) error {
	if err := requireSelf(userID, targetID); err != nil {
		return err
	}
	if err := validateInput(in); err != nil {
		return err
	}
	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return err
	}
	return s.Users.Update(ctx, targetID, map[string]interface{}{
		"password_hash":        hash,
		"needs_password_setup": false,
	})
}
