// Package services holds the resource operations. Each one resolves the
// resource and its team, asks the policy package, mutates through the
// stores and lets the fanout react to the change.
package services

import (
	"time"

	"taskhub/policy"
	"taskhub/utils"
)

// Stores is the persistence a Services bundle runs on
type Stores struct {
	Users         UserStore
	Teams         TeamStore
	Memberships   MembershipStore
	Projects      ProjectStore
	Tasks         TaskStore
	Comments      CommentStore
	Notifications NotificationStore
	Files         FileStore
}

type Options struct {
	Google         IdentityProvider
	MaxUploadBytes int64
	Sinks          []Sink
	Now            func() time.Time
}

type Services struct {
	Auth          *AuthService
	Users         *UserService
	Teams         *TeamService
	Projects      *ProjectService
	Tasks         *TaskService
	Comments      *CommentService
	Files         *FileService
	Reports       *ReportService
	Notifications *Notifier
}

func New(st Stores, opts Options) *Services {
	authz := policy.NewAuthorizer(st.Memberships)
	scope := &Scope{Teams: st.Teams, Projects: st.Projects, Tasks: st.Tasks, Auth: authz}
	notifier := NewNotifier(st.Notifications, utils.Logger("notifier"), opts.Sinks...)
	fanout := NewFanout(st.Tasks, notifier)

	return &Services{
		Auth:  &AuthService{Users: st.Users, Google: opts.Google, Log: utils.Logger("auth")},
		Users: &UserService{Users: st.Users, Log: utils.Logger("users")},
		Teams: &TeamService{
			Scope:       scope,
			Teams:       st.Teams,
			Memberships: st.Memberships,
			Users:       st.Users,
			Fanout:      fanout,
			Log:         utils.Logger("teams"),
		},
		Projects: &ProjectService{
			Scope:       scope,
			Projects:    st.Projects,
			Memberships: st.Memberships,
			Log:         utils.Logger("projects"),
		},
		Tasks: &TaskService{
			Scope:      scope,
			Tasks:      st.Tasks,
			Authorizer: authz,
			Fanout:     fanout,
			Log:        utils.Logger("tasks"),
		},
		Comments: &CommentService{Scope: scope, Comments: st.Comments, Log: utils.Logger("comments")},
		Files: &FileService{
			Scope:    scope,
			Files:    st.Files,
			MaxBytes: opts.MaxUploadBytes,
			Log:      utils.Logger("files"),
		},
		Reports: &ReportService{
			Scope:       scope,
			Teams:       st.Teams,
			Projects:    st.Projects,
			Tasks:       st.Tasks,
			Memberships: st.Memberships,
			Now:         opts.Now,
		},
		Notifications: notifier,
	}
}
