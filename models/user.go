package models

import (
	"strings"

	"gorm.io/gorm"
)

// User represents an account that can join teams and be assigned tasks
type User struct {
	gorm.Model

	FirstName string `gorm:"not null" json:"first_name"`
	LastName  string `gorm:"not null" json:"last_name"`
	Email     string `gorm:"uniqueIndex;not null" json:"email"`

	// Nil for accounts created through Google that never set a password
	PasswordHash *string `json:"-"`

	// Google OAuth fields
	GoogleID       *string `gorm:"uniqueIndex" json:"google_id,omitempty"`
	GoogleImageURL *string `json:"google_image_url,omitempty"`

	NeedsPasswordSetup bool `gorm:"default:false" json:"needs_password_setup"`
}

// FullName joins first and last name the way reports display members
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// HasPassword reports whether the account can log in with a password
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}
