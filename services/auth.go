package services

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"taskhub/errs"
	"taskhub/models"
	"taskhub/utils"
)

// IdentityProvider exchanges an OAuth code for the external identity
type IdentityProvider interface {
	AuthCodeURL(state string) string
	Identity(ctx context.Context, code string) (utils.GoogleIdentity, error)
}

type SignupInput struct {
	FirstName string `json:"first_name" validate:"required,max=50"`
	LastName  string `json:"last_name" validate:"required,max=50"`
	Email     string `json:"email" validate:"required,mailbox"`
	Password  string `json:"password" validate:"required,password"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,mailbox"`
	Password string `json:"password" validate:"required"`
}

// Session is returned by every successful login path
type Session struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type AuthService struct {
	Users  UserStore
	Google IdentityProvider
	Log    *logrus.Entry
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) session(user *models.User) (*Session, error) {
	token, err := utils.GenerateJWTToken(user)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, User: user}, nil
}

func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*Session, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if _, err := s.Users.ByEmail(ctx, in.Email); err == nil {
		return nil, errs.Conflict("email already registered")
	} else if !errors.Is(err, errs.ErrNotFound) {
		return nil, err
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        in.Email,
		PasswordHash: &hash,
	}
	if err := s.Users.Create(ctx, user); err != nil {
		return nil, err
	}
	utils.LogEvent("user_signup", map[string]interface{}{"user_id": user.ID})
	return s.session(user)
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	user, err := s.Users.ByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.Unauthorized("invalid email or password")
		}
		return nil, err
	}
	if !user.HasPassword() {
		return nil, errs.Unauthorized("this account signs in with Google")
	}
	if !utils.CheckPassword(*user.PasswordHash, in.Password) {
		return nil, errs.Unauthorized("invalid email or password")
	}
	return s.session(user)
}

func (s *AuthService) GoogleURL(state string) (string, error) {
	if s.Google == nil {
		return "", errs.Validation("google login is not configured")
	}
	return s.Google.AuthCodeURL(state), nil
}

// GoogleLogin finds the account by Google id, links an existing account by
// email, or creates a new one that still needs a password.
func (s *AuthService) GoogleLogin(ctx context.Context, code string) (*Session, error) {
	if s.Google == nil {
		return nil, errs.Validation("google login is not configured")
	}
	if strings.TrimSpace(code) == "" {
		return nil, errs.Validation("code is required")
	}
	identity, err := s.Google.Identity(ctx, code)
	if err != nil {
		utils.LogError("google_exchange_failed", err, nil)
		return nil, errs.Unauthorized("google authentication failed")
	}
	if identity.ID == "" || identity.Email == "" {
		return nil, errs.Unauthorized("google account has no email")
	}

	user, err := s.Users.ByGoogleID(ctx, identity.ID)
	if err == nil {
		return s.session(user)
	}
	if !errors.Is(err, errs.ErrNotFound) {
		return nil, err
	}

	email := normalizeEmail(identity.Email)
	user, err = s.Users.ByEmail(ctx, email)
	switch {
	case err == nil:
		fields := map[string]interface{}{"google_id": identity.ID}
		if identity.Picture != "" {
			fields["google_image_url"] = identity.Picture
		}
		if err := s.Users.Update(ctx, user.ID, fields); err != nil {
			return nil, err
		}
		user.GoogleID = &identity.ID
		if identity.Picture != "" {
			user.GoogleImageURL = &identity.Picture
		}
	case errors.Is(err, errs.ErrNotFound):
		user = &models.User{
			FirstName:          identity.GivenName,
			LastName:           identity.FamilyName,
			Email:              email,
			GoogleID:           &identity.ID,
			NeedsPasswordSetup: true,
		}
		if identity.Picture != "" {
			user.GoogleImageURL = &identity.Picture
		}
		if err := s.Users.Create(ctx, user); err != nil {
			return nil, err
		}
		utils.LogEvent("user_signup_google", map[string]interface{}{"user_id": user.ID})
	default:
		return nil, err
	}
	return s.session(user)
}
