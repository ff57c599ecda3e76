package services

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"taskhub/errs"
	"taskhub/models"
	"taskhub/policy"
	"taskhub/utils"
)

type CreateTeamInput struct {
	Name string `json:"team_name" validate:"required,max=100"`
	URL  string `json:"team_url" validate:"omitempty,max=64"`
}

type AddMemberInput struct {
	Email string `json:"email" validate:"required,mailbox"`
	Role  string `json:"role"`
}

// TeamView is a team with the caller's role and the member list
type TeamView struct {
	models.Team
	Role    models.Role         `json:"role"`
	Members []models.MemberView `json:"members"`
}

type TeamService struct {
	Scope       *Scope
	Teams       TeamStore
	Memberships MembershipStore
	Users       UserStore
	Fanout      *Fanout
	Log         *logrus.Entry
}

func validateInput(in interface{}) error {
	if err := utils.ValidateStruct(in); err != nil {
		return errs.Validation("%s", err.Error())
	}
	return nil
}

// Mine lists every team the user belongs to with their role
func (s *TeamService) Mine(ctx context.Context, userID uint) ([]models.TeamWithRole, error) {
	teams, err := s.Teams.ForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if teams == nil {
		teams = []models.TeamWithRole{}
	}
	return teams, nil
}

func (s *TeamService) GetByURL(ctx context.Context, userID uint, url string) (*TeamView, error) {
	team, err := s.Teams.ByURL(ctx, url)
	if err != nil {
		return nil, err
	}
	role, err := s.Scope.authorize(ctx, userID, policy.TeamRead, resourceOf(team))
	if err != nil {
		return nil, err
	}
	members, err := s.Memberships.Members(ctx, team.ID)
	if err != nil {
		return nil, err
	}
	return &TeamView{Team: *team, Role: role, Members: members}, nil
}

// Create stores the team and makes the creator its first admin
func (s *TeamService) Create(ctx context.Context, userID uint, in CreateTeamInput) (*models.Team, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	url := strings.TrimSpace(in.URL)
	if url == "" {
		url = utils.GenerateSlug()
	}
	team := &models.Team{Name: strings.TrimSpace(in.Name), URL: url, CreatedBy: userID}
	if err := s.Teams.CreateWithOwner(ctx, team); err != nil {
		return nil, err
	}
	utils.LogEvent("team_created", map[string]interface{}{"team_id": team.ID, "user_id": userID})
	return team, nil
}

func (s *TeamService) Rename(ctx context.Context, userID, teamID uint, in CreateTeamInput) (*models.Team, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	team, _, err := s.Scope.Team(ctx, userID, teamID, policy.TeamUpdate)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if err := s.Teams.Rename(ctx, team.ID, name); err != nil {
		return nil, err
	}
	team.Name = name
	return team, nil
}

func (s *TeamService) Delete(ctx context.Context, userID, teamID uint) error {
	team, _, err := s.Scope.Team(ctx, userID, teamID, policy.TeamDelete)
	if err != nil {
		return err
	}
	if err := s.Teams.Delete(ctx, team.ID); err != nil {
		return err
	}
	utils.LogEvent("team_deleted", map[string]interface{}{"team_id": team.ID, "user_id": userID})
	return nil
}

// AddMember adds the user behind email to the team and notifies them
func (s *TeamService) AddMember(ctx context.Context, userID, teamID uint, in AddMemberInput) (*models.MemberView, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	role, ok := models.ParseRole(strings.TrimSpace(in.Role))
	if !ok {
		return nil, errs.Validation("role must be one of: member, admin")
	}
	team, _, err := s.Scope.Team(ctx, userID, teamID, policy.TeamAddMember)
	if err != nil {
		return nil, err
	}

	user, err := s.Users.ByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.NotFound("User not found")
		}
		return nil, err
	}
	existing, err := s.Memberships.RoleOf(ctx, user.ID, team.ID)
	if err != nil {
		return nil, err
	}
	if existing.IsMember() {
		return nil, errs.Validation("User is already a member of this team")
	}
	if err := s.Memberships.AddMember(ctx, user.ID, team.ID, role); err != nil {
		return nil, err
	}

	s.Fanout.AddedToTeam(ctx, team, user.ID)
	return &models.MemberView{
		UserID:    user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Role:      role,
	}, nil
}

// RemoveMember deletes the target's membership. Their task assignments stay.
func (s *TeamService) RemoveMember(ctx context.Context, userID, teamID, targetID uint) error {
	team, _, err := s.Scope.Team(ctx, userID, teamID, policy.TeamRemoveMember)
	if err != nil {
		return err
	}
	removed, err := s.Memberships.RemoveMember(ctx, targetID, team.ID)
	if err != nil {
		return err
	}
	if !removed {
		return errs.NotFound("member not found")
	}
	return nil
}

func (s *TeamService) Leave(ctx context.Context, userID, teamID uint) error {
	team, _, err := s.Scope.Team(ctx, userID, teamID, policy.TeamLeave)
	if err != nil {
		return err
	}
	if _, err := s.Memberships.RemoveMember(ctx, userID, team.ID); err != nil {
		return err
	}
	return nil
}

func (s *TeamService) Members(ctx context.Context, userID, teamID uint) ([]models.MemberView, error) {
	team, _, err := s.Scope.Team(ctx, userID, teamID, policy.TeamRead)
	if err != nil {
		return nil, err
	}
	return s.Memberships.Members(ctx, team.ID)
}
