package services

import (
	"context"

	"taskhub/models"
)

// Stores return errs.ErrNotFound wrapped errors for missing records.

type UserStore interface {
	ByID(ctx context.Context, id uint) (*models.User, error)
	ByEmail(ctx context.Context, email string) (*models.User, error)
	ByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, id uint, fields map[string]interface{}) error
}

type MembershipStore interface {
	RoleOf(ctx context.Context, userID, teamID uint) (models.Role, error)
	AddMember(ctx context.Context, userID, teamID uint, role models.Role) error
	RemoveMember(ctx context.Context, userID, teamID uint) (bool, error)
	Members(ctx context.Context, teamID uint) ([]models.MemberView, error)
}

type TeamStore interface {
	CreateWithOwner(ctx context.Context, team *models.Team) error
	ByID(ctx context.Context, id uint) (*models.Team, error)
	ByURL(ctx context.Context, url string) (*models.Team, error)
	Rename(ctx context.Context, id uint, name string) error
	Delete(ctx context.Context, id uint) error
	ForUser(ctx context.Context, userID uint) ([]models.TeamWithRole, error)
}

type ProjectStore interface {
	CreateWithParticipant(ctx context.Context, project *models.Project) error
	ByID(ctx context.Context, id uint) (*models.Project, error)
	ByURL(ctx context.Context, url string) (*models.Project, error)
	ByTeam(ctx context.Context, teamID uint) ([]models.Project, error)
	Delete(ctx context.Context, id uint) error
	AddParticipant(ctx context.Context, projectID, userID uint) error
	RemoveParticipant(ctx context.Context, projectID, userID uint) (bool, error)
	Participants(ctx context.Context, projectID uint) ([]uint, error)
}

// AssignmentWriter is the part of the task store the fanout needs
type AssignmentWriter interface {
	SetAssignees(ctx context.Context, taskID uint, userIDs []uint) error
	AddAssignee(ctx context.Context, taskID, userID uint) error
}

type TaskStore interface {
	AssignmentWriter
	Create(ctx context.Context, task *models.Task, assignees []uint) error
	ByID(ctx context.Context, id uint) (*models.Task, error)
	ByProject(ctx context.Context, projectID uint) ([]models.Task, error)
	ByTeam(ctx context.Context, teamID uint) ([]models.Task, error)
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error
	SetStatus(ctx context.Context, id uint, status models.TaskStatus) (bool, error)
	Delete(ctx context.Context, id uint) error
	Assignees(ctx context.Context, taskID uint) ([]uint, error)
	AssigneesByTasks(ctx context.Context, taskIDs []uint) (map[uint][]uint, error)
	RemoveAssignee(ctx context.Context, taskID, userID uint) (bool, error)
	AssignmentsByTeam(ctx context.Context, teamID uint) ([]models.Assignment, error)
}

type CommentStore interface {
	Create(ctx context.Context, comment *models.Comment) error
	ByID(ctx context.Context, id uint) (*models.Comment, error)
	ByTask(ctx context.Context, taskID uint) ([]models.Comment, error)
	Delete(ctx context.Context, id uint) error
	ToggleLike(ctx context.Context, commentID, userID uint) (bool, int, error)
}

type NotificationStore interface {
	Insert(ctx context.Context, n *models.Notification) (bool, error)
	ForUser(ctx context.Context, userID uint, limit int) ([]models.Notification, error)
}

type FileStore interface {
	Create(ctx context.Context, file *models.TaskFile) error
	ByID(ctx context.Context, id uint) (*models.TaskFile, error)
	ByTask(ctx context.Context, taskID uint) ([]models.TaskFile, error)
	Delete(ctx context.Context, id uint) error
}
