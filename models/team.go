package models

import (
	"time"

	"gorm.io/gorm"
)

// Role is the closed set of roles a member can hold on a team.
// The zero value RoleNone means "not a member".
type Role string

const (
	RoleNone   Role = ""
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// ParseRole accepts only the known role names. An empty string maps to RoleMember
// so callers can apply the default when a request omits the role.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case "":
		return RoleMember, true
	case RoleMember:
		return RoleMember, true
	case RoleAdmin:
		return RoleAdmin, true
	}
	return RoleNone, false
}

// IsMember is true for any real role
func (r Role) IsMember() bool {
	return r == RoleMember || r == RoleAdmin
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// Team groups users and owns projects
type Team struct {
	gorm.Model
	Name      string `gorm:"not null" json:"team_name"`
	URL       string `gorm:"uniqueIndex;not null" json:"team_url"`
	CreatedBy uint   `gorm:"not null;index" json:"create_by"`

	// Relations
	Members  []Membership `gorm:"foreignKey:TeamID" json:"members,omitempty"`
	Projects []Project    `gorm:"foreignKey:TeamID" json:"projects,omitempty"`
}

// Membership is the (user, team) role row. There is at most one per pair.
type Membership struct {
	TeamID   uint      `gorm:"primaryKey" json:"team_id"`
	UserID   uint      `gorm:"primaryKey;index" json:"user_id"`
	Role     Role      `gorm:"type:varchar(16);not null;default:'member'" json:"role"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`

	// Relations
	Team Team `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	User User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// TeamWithRole is a team as seen by one member
type TeamWithRole struct {
	Team
	Role Role `json:"role"`
}

// MemberView joins a membership row with the member's profile
type MemberView struct {
	UserID    uint      `json:"user_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	JoinedAt  time.Time `json:"joined_at"`
}
