package services

import (
	"context"
	"errors"

	"taskhub/errs"
	"taskhub/metrics"
	"taskhub/models"
	"taskhub/policy"
)

// Scope walks resources up to their team and runs the authorization check
type Scope struct {
	Teams    TeamStore
	Projects ProjectStore
	Tasks    TaskStore
	Auth     *policy.Authorizer
}

func resourceOf(team *models.Team) policy.Resource {
	return policy.Resource{TeamID: team.ID, TeamCreatorID: team.CreatedBy}
}

func (s *Scope) authorize(ctx context.Context, userID uint, action policy.Action, res policy.Resource) (models.Role, error) {
	role, err := s.Auth.Authorize(ctx, userID, action, res)
	if errors.Is(err, errs.ErrForbidden) {
		metrics.AuthorizationDenials.WithLabelValues(string(action)).Inc()
	}
	return role, err
}

// Team loads a team and checks action against it
func (s *Scope) Team(ctx context.Context, userID, teamID uint, action policy.Action) (*models.Team, models.Role, error) {
	team, err := s.Teams.ByID(ctx, teamID)
	if err != nil {
		return nil, models.RoleNone, err
	}
	role, err := s.authorize(ctx, userID, action, resourceOf(team))
	if err != nil {
		return nil, role, err
	}
	return team, role, nil
}

// Project resolves project -> team and checks action
func (s *Scope) Project(ctx context.Context, userID, projectID uint, action policy.Action, res policy.Resource) (*models.Project, *models.Team, error) {
	project, err := s.Projects.ByID(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}
	team, err := s.teamOf(ctx, project)
	if err != nil {
		return nil, nil, err
	}
	res.TeamID, res.TeamCreatorID = team.ID, team.CreatedBy
	if _, err := s.authorize(ctx, userID, action, res); err != nil {
		return nil, nil, err
	}
	return project, team, nil
}

// Task resolves task -> project -> team and checks action
func (s *Scope) Task(ctx context.Context, userID, taskID uint, action policy.Action, res policy.Resource) (*models.Task, *models.Team, error) {
	task, team, err := s.TaskChain(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}
	res.TeamID, res.TeamCreatorID = team.ID, team.CreatedBy
	if _, err := s.authorize(ctx, userID, action, res); err != nil {
		return nil, nil, err
	}
	return task, team, nil
}

// TaskChain loads a task with its team and no authorization. A missing link
// anywhere in the chain is reported as not found.
func (s *Scope) TaskChain(ctx context.Context, taskID uint) (*models.Task, *models.Team, error) {
	task, err := s.Tasks.ByID(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}
	project, err := s.Projects.ByID(ctx, task.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	team, err := s.teamOf(ctx, project)
	if err != nil {
		return nil, nil, err
	}
	return task, team, nil
}

func (s *Scope) teamOf(ctx context.Context, project *models.Project) (*models.Team, error) {
	return s.Teams.ByID(ctx, project.TeamID)
}
