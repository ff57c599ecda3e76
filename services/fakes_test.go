package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"taskhub/errs"
	"taskhub/models"
	"taskhub/utils"
)

// memStore implements every store interface in memory
type memStore struct {
	mu sync.Mutex

	nextID        uint
	users         map[uint]*models.User
	teams         map[uint]*models.Team
	roles         map[[2]uint]models.Role // {team, user}
	projects      map[uint]*models.Project
	participants  map[uint][]uint
	tasks         map[uint]*models.Task
	assignees     map[uint][]uint
	comments      map[uint]*models.Comment
	likes         map[[2]uint]bool // {comment, user}
	notifications []models.Notification
	dedup         map[string]bool
	files         map[uint]*models.TaskFile

	failInsert error
}

func newMemStore() *memStore {
	return &memStore{
		users:        map[uint]*models.User{},
		teams:        map[uint]*models.Team{},
		roles:        map[[2]uint]models.Role{},
		projects:     map[uint]*models.Project{},
		participants: map[uint][]uint{},
		tasks:        map[uint]*models.Task{},
		assignees:    map[uint][]uint{},
		comments:     map[uint]*models.Comment{},
		likes:        map[[2]uint]bool{},
		dedup:        map[string]bool{},
		files:        map[uint]*models.TaskFile{},
	}
}

func (m *memStore) id() uint {
	m.nextID++
	return m.nextID
}

func (m *memStore) stores() Stores {
	return Stores{
		Users:         userFake{m},
		Teams:         teamFake{m},
		Memberships:   memberFake{m},
		Projects:      projectFake{m},
		Tasks:         taskFake{m},
		Comments:      commentFake{m},
		Notifications: notificationFake{m},
		Files:         fileFake{m},
	}
}

// seeding helpers

func (m *memStore) addUser(first, email string) uint {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.id()
	m.users[id] = &models.User{FirstName: first, LastName: "Test", Email: email}
	m.users[id].ID = id
	return id
}

func (m *memStore) addTeam(name string, creator uint) uint {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.id()
	t := &models.Team{Name: name, URL: name, CreatedBy: creator}
	t.ID = id
	m.teams[id] = t
	m.roles[[2]uint{id, creator}] = models.RoleAdmin
	return id
}

func (m *memStore) join(team, user uint, role models.Role) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roles[[2]uint{team, user}] = role
}

func (m *memStore) addProject(team uint, name string) uint {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.id()
	p := &models.Project{Name: name, URL: name, TeamID: team}
	p.ID = id
	m.projects[id] = p
	return id
}

func (m *memStore) addTask(project uint, title string, status models.TaskStatus, assignees ...uint) uint {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.id()
	t := &models.Task{Title: title, ProjectID: project, Status: status, Priority: models.DefaultPriority}
	t.ID = id
	t.CreatedAt = time.Now()
	m.tasks[id] = t
	m.assignees[id] = append([]uint(nil), assignees...)
	return id
}

func (m *memStore) sent(title string) []models.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Notification
	for _, n := range m.notifications {
		if title == "" || n.Title == title {
			out = append(out, n)
		}
	}
	return out
}

type userFake struct{ m *memStore }

func (f userFake) ByID(_ context.Context, id uint) (*models.User, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if u, ok := f.m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, errs.NotFound("user not found")
}

func (f userFake) find(match func(*models.User) bool) (*models.User, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	for _, u := range f.m.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, errs.NotFound("user not found")
}

func (f userFake) ByEmail(_ context.Context, email string) (*models.User, error) {
	return f.find(func(u *models.User) bool { return u.Email == email })
}

func (f userFake) ByGoogleID(_ context.Context, googleID string) (*models.User, error) {
	return f.find(func(u *models.User) bool { return u.GoogleID != nil && *u.GoogleID == googleID })
}

func (f userFake) Create(_ context.Context, user *models.User) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	for _, u := range f.m.users {
		if u.Email == user.Email {
			return errs.Conflict("email already registered")
		}
	}
	user.ID = f.m.id()
	cp := *user
	f.m.users[user.ID] = &cp
	return nil
}

func (f userFake) Update(_ context.Context, id uint, fields map[string]interface{}) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	u, ok := f.m.users[id]
	if !ok {
		return errs.NotFound("user not found")
	}
	for k, v := range fields {
		switch k {
		case "first_name":
			u.FirstName = v.(string)
		case "last_name":
			u.LastName = v.(string)
		case "password_hash":
			u.PasswordHash = utils.Pointer(v.(string))
		case "needs_password_setup":
			u.NeedsPasswordSetup = v.(bool)
		case "google_id":
			u.GoogleID = utils.Pointer(v.(string))
		case "google_image_url":
			u.GoogleImageURL = utils.Pointer(v.(string))
		}
	}
	return nil
}

type memberFake struct{ m *memStore }

func (f memberFake) RoleOf(_ context.Context, userID, teamID uint) (models.Role, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	return f.m.roles[[2]uint{teamID, userID}], nil
}

func (f memberFake) AddMember(_ context.Context, userID, teamID uint, role models.Role) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	key := [2]uint{teamID, userID}
	if _, ok := f.m.roles[key]; ok {
		return errs.Conflict("user is already a member")
	}
	f.m.roles[key] = role
	return nil
}

func (f memberFake) RemoveMember(_ context.Context, userID, teamID uint) (bool, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	key := [2]uint{teamID, userID}
	_, ok := f.m.roles[key]
	delete(f.m.roles, key)
	return ok, nil
}

func (f memberFake) Members(_ context.Context, teamID uint) ([]models.MemberView, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	var out []models.MemberView
	for key, role := range f.m.roles {
		if key[0] != teamID {
			continue
		}
		u := f.m.users[key[1]]
		v := models.MemberView{UserID: key[1], Role: role}
		if u != nil {
			v.FirstName, v.LastName, v.Email = u.FirstName, u.LastName, u.Email
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

type teamFake struct{ m *memStore }

func (f teamFake) CreateWithOwner(_ context.Context, team *models.Team) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	team.ID = f.m.id()
	cp := *team
	f.m.teams[team.ID] = &cp
	f.m.roles[[2]uint{team.ID, team.CreatedBy}] = models.RoleAdmin
	return nil
}

func (f teamFake) ByID(_ context.Context, id uint) (*models.Team, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if t, ok := f.m.teams[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, errs.NotFound("team not found")
}

func (f teamFake) ByURL(_ context.Context, url string) (*models.Team, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	for _, t := range f.m.teams {
		if t.URL == url {
			cp := *t
			return &cp, nil
		}
	}
	return nil, errs.NotFound("team not found")
}

func (f teamFake) Rename(_ context.Context, id uint, name string) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	f.m.teams[id].Name = name
	return nil
}

func (f teamFake) Delete(_ context.Context, id uint) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	delete(f.m.teams, id)
	return nil
}

func (f teamFake) ForUser(_ context.Context, userID uint) ([]models.TeamWithRole, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	var out []models.TeamWithRole
	for key, role := range f.m.roles {
		if key[1] == userID {
			out = append(out, models.TeamWithRole{Team: *f.m.teams[key[0]], Role: role})
		}
	}
	return out, nil
}

type projectFake struct{ m *memStore }

func (f projectFake) CreateWithParticipant(_ context.Context, p *models.Project) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	p.ID = f.m.id()
	cp := *p
	f.m.projects[p.ID] = &cp
	f.m.participants[p.ID] = []uint{p.CreatedBy}
	return nil
}

func (f projectFake) ByID(_ context.Context, id uint) (*models.Project, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if p, ok := f.m.projects[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, errs.NotFound("project not found")
}

func (f projectFake) ByURL(_ context.Context, url string) (*models.Project, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	for _, p := range f.m.projects {
		if p.URL == url {
			cp := *p
			return &cp, nil
		}
	}
	return nil, errs.NotFound("project not found")
}

func (f projectFake) ByTeam(_ context.Context, teamID uint) ([]models.Project, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	var out []models.Project
	for _, p := range f.m.projects {
		if p.TeamID == teamID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f projectFake) Delete(_ context.Context, id uint) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	delete(f.m.projects, id)
	return nil
}

func (f projectFake) AddParticipant(_ context.Context, projectID, userID uint) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	for _, id := range f.m.participants[projectID] {
		if id == userID {
			return nil
		}
	}
	f.m.participants[projectID] = append(f.m.participants[projectID], userID)
	return nil
}

func (f projectFake) RemoveParticipant(_ context.Context, projectID, userID uint) (bool, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	ids := f.m.participants[projectID]
	for i, id := range ids {
		if id == userID {
			f.m.participants[projectID] = append(ids[:i:i], ids[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f projectFake) Participants(_ context.Context, projectID uint) ([]uint, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	return append([]uint(nil), f.m.participants[projectID]...), nil
}

type taskFake struct{ m *memStore }

func (f taskFake) Create(_ context.Context, task *models.Task, assignees []uint) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	task.ID = f.m.id()
	task.CreatedAt = time.Now()
	cp := *task
	f.m.tasks[task.ID] = &cp
	f.m.assignees[task.ID] = append([]uint(nil), assignees...)
	return nil
}

func (f taskFake) ByID(_ context.Context, id uint) (*models.Task, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if t, ok := f.m.tasks[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, errs.NotFound("task not found")
}

func (f taskFake) ByProject(_ context.Context, projectID uint) ([]models.Task, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	var out []models.Task
	for _, t := range f.m.tasks {
		if t.ProjectID == projectID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f taskFake) ByTeam(_ context.Context, teamID uint) ([]models.Task, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	var out []models.Task
	for _, t := range f.m.tasks {
		if p := f.m.projects[t.ProjectID]; p != nil && p.TeamID == teamID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f taskFake) UpdateFields(_ context.Context, id uint, fields map[string]interface{}) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	t, ok := f.m.tasks[id]
	if !ok {
		return errs.NotFound("task not found")
	}
	for k, v := range fields {
		switch k {
		case "title":
			t.Title = v.(string)
		case "description":
			t.Description = v.(string)
		case "priority":
			t.Priority = v.(int)
		case "due_date":
			t.DueDate = v.(*time.Time)
		}
	}
	return nil
}

func (f taskFake) SetStatus(_ context.Context, id uint, status models.TaskStatus) (bool, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	t, ok := f.m.tasks[id]
	if !ok {
		return false, errs.NotFound("task not found")
	}
	if t.Status == status {
		return false, nil
	}
	t.Status = status
	return true, nil
}

func (f taskFake) Delete(_ context.Context, id uint) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	delete(f.m.tasks, id)
	delete(f.m.assignees, id)
	return nil
}

func (f taskFake) Assignees(_ context.Context, taskID uint) ([]uint, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	return append([]uint(nil), f.m.assignees[taskID]...), nil
}

func (f taskFake) AssigneesByTasks(_ context.Context, taskIDs []uint) (map[uint][]uint, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	out := map[uint][]uint{}
	for _, id := range taskIDs {
		if ids := f.m.assignees[id]; len(ids) > 0 {
			out[id] = append([]uint(nil), ids...)
		}
	}
	return out, nil
}

func (f taskFake) SetAssignees(_ context.Context, taskID uint, userIDs []uint) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	f.m.assignees[taskID] = append([]uint(nil), userIDs...)
	return nil
}

func (f taskFake) AddAssignee(_ context.Context, taskID, userID uint) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	for _, id := range f.m.assignees[taskID] {
		if id == userID {
			return nil
		}
	}
	f.m.assignees[taskID] = append(f.m.assignees[taskID], userID)
	return nil
}

func (f taskFake) RemoveAssignee(_ context.Context, taskID, userID uint) (bool, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	ids := f.m.assignees[taskID]
	for i, id := range ids {
		if id == userID {
			f.m.assignees[taskID] = append(ids[:i:i], ids[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f taskFake) AssignmentsByTeam(_ context.Context, teamID uint) ([]models.Assignment, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	var out []models.Assignment
	for taskID, ids := range f.m.assignees {
		t := f.m.tasks[taskID]
		if t == nil || f.m.projects[t.ProjectID] == nil || f.m.projects[t.ProjectID].TeamID != teamID {
			continue
		}
		for _, id := range ids {
			out = append(out, models.Assignment{TaskID: taskID, UserID: id})
		}
	}
	return out, nil
}

type commentFake struct{ m *memStore }

func (f commentFake) Create(_ context.Context, c *models.Comment) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	c.ID = f.m.id()
	cp := *c
	f.m.comments[c.ID] = &cp
	return nil
}

func (f commentFake) ByID(_ context.Context, id uint) (*models.Comment, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if c, ok := f.m.comments[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, errs.NotFound("comment not found")
}

func (f commentFake) ByTask(_ context.Context, taskID uint) ([]models.Comment, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	var out []models.Comment
	for _, c := range f.m.comments {
		if c.TaskID == taskID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f commentFake) Delete(_ context.Context, id uint) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	delete(f.m.comments, id)
	return nil
}

func (f commentFake) ToggleLike(_ context.Context, commentID, userID uint) (bool, int, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	c := f.m.comments[commentID]
	key := [2]uint{commentID, userID}
	if f.m.likes[key] {
		delete(f.m.likes, key)
		c.LikeCount--
		return false, c.LikeCount, nil
	}
	f.m.likes[key] = true
	c.LikeCount++
	return true, c.LikeCount, nil
}

type notificationFake struct{ m *memStore }

func (f notificationFake) Insert(_ context.Context, n *models.Notification) (bool, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if f.m.failInsert != nil {
		return false, f.m.failInsert
	}
	if n.DedupKey != nil {
		if f.m.dedup[*n.DedupKey] {
			return false, nil
		}
		f.m.dedup[*n.DedupKey] = true
	}
	n.ID = f.m.id()
	n.CreatedAt = time.Now()
	f.m.notifications = append(f.m.notifications, *n)
	return true, nil
}

func (f notificationFake) ForUser(_ context.Context, userID uint, limit int) ([]models.Notification, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	var out []models.Notification
	for i := len(f.m.notifications) - 1; i >= 0 && len(out) < limit; i-- {
		if f.m.notifications[i].UserID == userID {
			out = append(out, f.m.notifications[i])
		}
	}
	return out, nil
}

type fileFake struct{ m *memStore }

func (f fileFake) Create(_ context.Context, file *models.TaskFile) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	file.ID = f.m.id()
	cp := *file
	f.m.files[file.ID] = &cp
	return nil
}

func (f fileFake) ByID(_ context.Context, id uint) (*models.TaskFile, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if file, ok := f.m.files[id]; ok {
		cp := *file
		return &cp, nil
	}
	return nil, errs.NotFound("file not found")
}

func (f fileFake) ByTask(_ context.Context, taskID uint) ([]models.TaskFile, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	var out []models.TaskFile
	for _, file := range f.m.files {
		if file.TaskID == taskID {
			cp := *file
			cp.Data = nil
			out = append(out, cp)
		}
	}
	return out, nil
}

func (f fileFake) Delete(_ context.Context, id uint) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	delete(f.m.files, id)
	return nil
}

var errBoom = errors.New("boom")
