package services

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"taskhub/errs"
	"taskhub/models"
	"taskhub/policy"
	"taskhub/utils"
)

type CreateProjectInput struct {
	TeamID      uint   `json:"team_id" validate:"required"`
	Name        string `json:"project_name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=2000"`
	URL         string `json:"project_url" validate:"omitempty,max=64"`
}

// ProjectView is a project with its participant ids
type ProjectView struct {
	models.Project
	Participants []uint `json:"participants"`
}

type ProjectService struct {
	Scope       *Scope
	Projects    ProjectStore
	Memberships MembershipStore
	Log         *logrus.Entry
}

func (s *ProjectService) ListByTeam(ctx context.Context, userID, teamID uint) ([]models.Project, error) {
	if _, _, err := s.Scope.Team(ctx, userID, teamID, policy.ProjectList); err != nil {
		return nil, err
	}
	projects, err := s.Projects.ByTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if projects == nil {
		projects = []models.Project{}
	}
	return projects, nil
}

func (s *ProjectService) GetByURL(ctx context.Context, userID uint, url string) (*ProjectView, error) {
	found, err := s.Projects.ByURL(ctx, url)
	if err != nil {
		return nil, err
	}
	project, _, err := s.Scope.Project(ctx, userID, found.ID, policy.ProjectRead, policy.Resource{})
	if err != nil {
		return nil, err
	}
	participants, err := s.Projects.Participants(ctx, project.ID)
	if err != nil {
		return nil, err
	}
	return &ProjectView{Project: *project, Participants: participants}, nil
}

// Create stores the project under the team and records the creator as a participant
func (s *ProjectService) Create(ctx context.Context, userID uint, in CreateProjectInput) (*models.Project, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if _, _, err := s.Scope.Team(ctx, userID, in.TeamID, policy.ProjectCreate); err != nil {
		return nil, err
	}
	url := strings.TrimSpace(in.URL)
	if url == "" {
		url = utils.GenerateSlug()
	}
	project := &models.Project{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		URL:         url,
		TeamID:      in.TeamID,
		CreatedBy:   userID,
	}
	if err := s.Projects.CreateWithParticipant(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *ProjectService) AddParticipant(ctx context.Context, userID, projectID, targetID uint) error {
	project, team, err := s.Scope.Project(ctx, userID, projectID, policy.ProjectAddParticipant, policy.Resource{TargetUserID: targetID})
	if err != nil {
		return err
	}
	role, err := s.Memberships.RoleOf(ctx, targetID, team.ID)
	if err != nil {
		return err
	}
	if !role.IsMember() {
		return errs.Forbidden("User %d is not a member of this team", targetID)
	}
	return s.Projects.AddParticipant(ctx, project.ID, targetID)
}

// RemoveParticipant is allowed for admins and for the participant themselves
func (s *ProjectService) RemoveParticipant(ctx context.Context, userID, projectID, targetID uint) error {
	project, _, err := s.Scope.Project(ctx, userID, projectID, policy.ProjectRemoveParticipant, policy.Resource{TargetUserID: targetID})
	if err != nil {
		return err
	}
	removed, err := s.Projects.RemoveParticipant(ctx, project.ID, targetID)
	if err != nil {
		return err
	}
	if !removed {
		return errs.NotFound("participant not found")
	}
	return nil
}

func (s *ProjectService) Delete(ctx context.Context, userID, projectID uint) error {
	project, _, err := s.Scope.Project(ctx, userID, projectID, policy.ProjectDelete, policy.Resource{})
	if err != nil {
		return err
	}
	return s.Projects.Delete(ctx, project.ID)
}
