// Package policy decides who may do what to teams, projects, tasks, comments
// and files. Every rule is keyed by Action and evaluated by Evaluate; anything
// without a rule is denied.
package policy

import (
	"strings"

	"taskhub/models"
)

type Action string

const (
	TeamRead         Action = "team.read"
	TeamReport       Action = "team.report"
	TeamUpdate       Action = "team.update"
	TeamDelete       Action = "team.delete"
	TeamAddMember    Action = "team.member.add"
	TeamRemoveMember Action = "team.member.remove"
	TeamLeave        Action = "team.leave"

	ProjectRead              Action = "project.read"
	ProjectList              Action = "project.list"
	ProjectCreate            Action = "project.create"
	ProjectAddParticipant    Action = "project.participant.add"
	ProjectRemoveParticipant Action = "project.participant.remove"
	ProjectDelete            Action = "project.delete"

	TaskRead   Action = "task.read"
	TaskCreate Action = "task.create"
	TaskUpdate Action = "task.update"
	TaskAssign Action = "task.assign"
	TaskDelete Action = "task.delete"

	CommentRead   Action = "comment.read"
	CommentCreate Action = "comment.create"
	CommentDelete Action = "comment.delete"
	CommentLike   Action = "comment.like"

	FileRead   Action = "file.read"
	FileUpload Action = "file.upload"
	FileDelete Action = "file.delete"
)

// Subject is the acting user together with the role they hold on the
// resource's team. Role is models.RoleNone when there is no membership row.
type Subject struct {
	UserID uint
	Role   models.Role
}

// Resource carries the ownership facts a rule may consult. Callers resolve
// TeamID and TeamCreatorID by walking task -> project -> team.
type Resource struct {
	TeamID        uint
	TeamCreatorID uint
	// OwnerID is the comment author or the file uploader.
	OwnerID uint
	// TargetUserID is the user a membership or participation change applies to.
	TargetUserID uint
}

// Decision is the outcome of one evaluation. Rule names the rule that allowed
// the action or, on denial, the requirement that was not met.
type Decision struct {
	Allowed bool
	Rule    string
}

type rule func(Subject, Resource) Decision

var rules = map[Action]rule{
	TeamRead:         requireMember,
	TeamReport:       requireMember,
	TeamUpdate:       requireAdmin,
	TeamDelete:       requireAdmin,
	TeamAddMember:    requireAdmin,
	TeamRemoveMember: requireAdmin,
	TeamLeave:        requireMember,

	ProjectRead:              requireMember,
	ProjectList:              requireMember,
	ProjectCreate:            requireMember,
	ProjectAddParticipant:    requireAdmin,
	ProjectRemoveParticipant: adminOrSelf,
	ProjectDelete:            requireAdmin,

	TaskRead:   requireMember,
	TaskCreate: requireMember,
	TaskUpdate: requireMember,
	TaskAssign: requireMember,
	TaskDelete: requireTeamCreator,

	CommentRead:   requireMember,
	CommentCreate: requireMember,
	CommentDelete: authorAdminOrCreator,
	CommentLike:   requireMember,

	FileRead:   requireMember,
	FileUpload: requireMember,
	FileDelete: requireUploader,
}

// Evaluate applies the rule registered for action. Unknown actions are denied.
func Evaluate(action Action, sub Subject, res Resource) Decision {
	r, ok := rules[action]
	if !ok {
		return deny("no rule for " + string(action))
	}
	if sub.UserID == 0 {
		return deny("authenticated user required")
	}
	return r(sub, res)
}

func allow(rule string) Decision { return Decision{Allowed: true, Rule: rule} }
func deny(rule string) Decision  { return Decision{Allowed: false, Rule: rule} }

func requireMember(sub Subject, _ Resource) Decision {
	if sub.Role.IsMember() {
		return allow("team member")
	}
	return deny("you must be a team member")
}

func requireAdmin(sub Subject, _ Resource) Decision {
	if sub.Role.IsAdmin() {
		return allow("team admin")
	}
	return deny("admin role required")
}

func adminOrSelf(sub Subject, res Resource) Decision {
	if sub.Role.IsAdmin() {
		return allow("team admin")
	}
	if sub.Role.IsMember() && res.TargetUserID == sub.UserID {
		return allow("self removal")
	}
	return deny("admin role required to remove other participants")
}

// Task deletion is tied to team ownership, not to the admin role.
func requireTeamCreator(sub Subject, res Resource) Decision {
	if res.TeamCreatorID != 0 && res.TeamCreatorID == sub.UserID {
		return allow("team creator")
	}
	return deny("only the team creator can delete tasks")
}

// Each condition is checked so the decision records every one that held.
func authorAdminOrCreator(sub Subject, res Resource) Decision {
	var matched []string
	if res.OwnerID != 0 && res.OwnerID == sub.UserID {
		matched = append(matched, "comment author")
	}
	if sub.Role.IsAdmin() {
		matched = append(matched, "team admin")
	}
	if res.TeamCreatorID != 0 && res.TeamCreatorID == sub.UserID {
		matched = append(matched, "team creator")
	}
	if len(matched) == 0 {
		return deny("only the author, a team admin or the team creator can delete this comment")
	}
	return allow(strings.Join(matched, ","))
}

func requireUploader(sub Subject, res Resource) Decision {
	if !sub.Role.IsMember() {
		return deny("you must be a team member")
	}
	if res.OwnerID != 0 && res.OwnerID == sub.UserID {
		return allow("uploader")
	}
	return deny("only the uploader can delete this file")
}
