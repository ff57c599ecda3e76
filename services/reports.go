package services

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"taskhub/errs"
	"taskhub/models"
	"taskhub/policy"
)

const (
	defaultReportPeriod = 30
	recentActivityLimit = 10
)

type ReportQuery struct {
	PeriodDays int
	// Project is "all" or a project id
	Project string
}

type ReportTeam struct {
	ID        uint      `json:"team_id"`
	Name      string    `json:"team_name"`
	URL       string    `json:"team_url"`
	CreatedAt time.Time `json:"created_at"`
}

type ReportOverview struct {
	TotalProjects   int `json:"total_projects"`
	TotalTasks      int `json:"total_tasks"`
	CompletedTasks  int `json:"completed_tasks"`
	InProgressTasks int `json:"in_progress_tasks"`
	TodoTasks       int `json:"todo_tasks"`
	OverdueTasks    int `json:"overdue_tasks"`
	CompletionRate  int `json:"completion_rate"`
	CompletionTrend int `json:"completion_trend"`
	TotalMembers    int `json:"total_members"`
}

type ProjectStats struct {
	ProjectID  uint   `json:"project_id"`
	Name       string `json:"project_name"`
	URL        string `json:"project_url"`
	TotalTasks int    `json:"total_tasks"`
	Completed  int    `json:"completed"`
	InProgress int    `json:"in_progress"`
	Todo       int    `json:"todo"`
	Overdue    int    `json:"overdue"`
}

type MemberPerformance struct {
	UserID         uint        `json:"user_id"`
	Name           string      `json:"name"`
	Email          string      `json:"email"`
	Role           models.Role `json:"role"`
	AssignedTasks  int         `json:"assigned_tasks"`
	CompletedTasks int         `json:"completed_tasks"`
	CompletionRate int         `json:"completion_rate"`
}

type ActivityItem struct {
	TaskID      uint       `json:"task_id"`
	Title       string     `json:"title"`
	Status      string     `json:"status"`
	ProjectName string     `json:"project_name"`
	DueDate     *time.Time `json:"due_date"`
}

type TeamReport struct {
	Team              ReportTeam          `json:"team"`
	Overview          ReportOverview      `json:"overview"`
	ProjectStats      []ProjectStats      `json:"project_stats"`
	MemberPerformance []MemberPerformance `json:"member_performance"`
	RecentActivity    []ActivityItem      `json:"recent_activity"`
}

type ReportService struct {
	Scope       *Scope
	Teams       TeamStore
	Projects    ProjectStore
	Tasks       TaskStore
	Memberships MembershipStore
	Now         func() time.Time
}

func rate(done, total int) int {
	if total == 0 {
		return 0
	}
	return int(float64(done)/float64(total)*100 + 0.5)
}

func (s *ReportService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Build computes the team report for a member of the team
func (s *ReportService) Build(ctx context.Context, userID uint, teamURL string, q ReportQuery) (*TeamReport, error) {
	team, err := s.Teams.ByURL(ctx, teamURL)
	if err != nil {
		return nil, err
	}
	if _, err := s.Scope.authorize(ctx, userID, policy.TeamReport, resourceOf(team)); err != nil {
		return nil, err
	}
	if q.PeriodDays <= 0 {
		q.PeriodDays = defaultReportPeriod
	}

	projects, err := s.Projects.ByTeam(ctx, team.ID)
	if err != nil {
		return nil, err
	}
	if q.Project != "" && q.Project != "all" {
		id, err := strconv.ParseUint(q.Project, 10, 64)
		if err != nil {
			return nil, errs.Validation("project must be \"all\" or a project id")
		}
		filtered := projects[:0:0]
		for _, p := range projects {
			if uint64(p.ID) == id {
				filtered = append(filtered, p)
			}
		}
		projects = filtered
	}
	included := make(map[uint]*models.Project, len(projects))
	for i := range projects {
		included[projects[i].ID] = &projects[i]
	}

	all, err := s.Tasks.ByTeam(ctx, team.ID)
	if err != nil {
		return nil, err
	}
	var tasks []models.Task
	for _, t := range all {
		if _, ok := included[t.ProjectID]; ok {
			tasks = append(tasks, t)
		}
	}
	members, err := s.Memberships.Members(ctx, team.ID)
	if err != nil {
		return nil, err
	}
	assignments, err := s.Tasks.AssignmentsByTeam(ctx, team.ID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	report := &TeamReport{
		Team: ReportTeam{ID: team.ID, Name: team.Name, URL: team.URL, CreatedAt: team.CreatedAt},
	}

	stats := make(map[uint]*ProjectStats, len(projects))
	report.ProjectStats = make([]ProjectStats, len(projects))
	for i, p := range projects {
		name := p.Name
		if name == "" {
			name = fmt.Sprintf("Project %d", p.ID)
		}
		report.ProjectStats[i] = ProjectStats{ProjectID: p.ID, Name: name, URL: p.URL}
		stats[p.ID] = &report.ProjectStats[i]
	}

	ov := &report.Overview
	ov.TotalProjects = len(projects)
	ov.TotalMembers = len(members)
	status := make(map[uint]models.TaskStatus, len(tasks))
	for _, t := range tasks {
		status[t.ID] = t.Status
		ps := stats[t.ProjectID]
		ov.TotalTasks++
		ps.TotalTasks++
		switch t.Status {
		case models.StatusDone:
			ov.CompletedTasks++
			ps.Completed++
		case models.StatusInProgress:
			ov.InProgressTasks++
			ps.InProgress++
		default:
			ov.TodoTasks++
			ps.Todo++
		}
		if t.DueDate != nil && t.Status != models.StatusDone && t.DueDate.Before(today) {
			ov.OverdueTasks++
			ps.Overdue++
		}
	}
	ov.CompletionRate = rate(ov.CompletedTasks, ov.TotalTasks)
	ov.CompletionTrend = completionTrend(tasks, now, q.PeriodDays)

	assigned := map[uint][2]int{}
	for _, a := range assignments {
		st, ok := status[a.TaskID]
		if !ok {
			continue
		}
		c := assigned[a.UserID]
		c[0]++
		if st == models.StatusDone {
			c[1]++
		}
		assigned[a.UserID] = c
	}
	report.MemberPerformance = make([]MemberPerformance, 0, len(members))
	for _, m := range members {
		c := assigned[m.UserID]
		report.MemberPerformance = append(report.MemberPerformance, MemberPerformance{
			UserID:         m.UserID,
			Name:           (&models.User{FirstName: m.FirstName, LastName: m.LastName}).FullName(),
			Email:          m.Email,
			Role:           m.Role,
			AssignedTasks:  c[0],
			CompletedTasks: c[1],
			CompletionRate: rate(c[1], c[0]),
		})
	}

	report.RecentActivity = recentActivity(tasks, included, now.AddDate(0, 0, -q.PeriodDays))
	return report, nil
}

// completionTrend is the completion rate of tasks created in the current
// period minus the rate of tasks created in the period before it.
func completionTrend(tasks []models.Task, now time.Time, days int) int {
	start := now.AddDate(0, 0, -days)
	prevStart := start.AddDate(0, 0, -days)
	var cur, curDone, prev, prevDone int
	for _, t := range tasks {
		switch {
		case !t.CreatedAt.Before(start):
			cur++
			if t.Status == models.StatusDone {
				curDone++
			}
		case !t.CreatedAt.Before(prevStart):
			prev++
			if t.Status == models.StatusDone {
				prevDone++
			}
		}
	}
	return rate(curDone, cur) - rate(prevDone, prev)
}

func recentActivity(tasks []models.Task, projects map[uint]*models.Project, since time.Time) []ActivityItem {
	var recent []models.Task
	for _, t := range tasks {
		if !t.CreatedAt.Before(since) {
			recent = append(recent, t)
		}
	}
	sort.Slice(recent, func(i, j int) bool { return recent[i].ID > recent[j].ID })
	if len(recent) > recentActivityLimit {
		recent = recent[:recentActivityLimit]
	}
	out := make([]ActivityItem, 0, len(recent))
	for _, t := range recent {
		item := ActivityItem{TaskID: t.ID, Title: t.Title, Status: t.Status.Label(), DueDate: t.DueDate}
		if p := projects[t.ProjectID]; p != nil {
			item.ProjectName = p.Name
		}
		out = append(out, item)
	}
	return out
}
