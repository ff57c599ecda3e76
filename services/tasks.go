package services

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"taskhub/errs"
	"taskhub/models"
	"taskhub/policy"
	"taskhub/utils"
)

const dueDateLayout = "2006-01-02"

type CreateTaskInput struct {
	ProjectID   uint    `json:"project_id" validate:"required"`
	Title       string  `json:"title" validate:"required,max=200"`
	Description string  `json:"description"`
	DueDate     *string `json:"due_date"`
	Priority    *int    `json:"priority" validate:"omitempty,gte=0,lte=10"`
	Status      *int    `json:"status"`
	// Either list or single id; the list wins when both are set.
	AssigneeIDs []uint `json:"assigned_user_ids"`
	AssigneeID  *uint  `json:"assigned_user_id"`
}

// UpdateTaskInput is a partial update. Nil fields are left alone and a
// non-nil AssigneeIDs replaces the assignee set.
type UpdateTaskInput struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description"`
	DueDate     *string `json:"due_date"`
	Priority    *int    `json:"priority" validate:"omitempty,gte=0,lte=10"`
	Status      *int    `json:"status"`
	AssigneeIDs *[]uint `json:"assigned_user_ids"`
}

type TaskService struct {
	Scope      *Scope
	Tasks      TaskStore
	Authorizer *policy.Authorizer
	Fanout     *Fanout
	Log        *logrus.Entry
}

// ParseDueDate accepts a calendar date or an RFC3339 timestamp. An empty
// string means "no due date".
func ParseDueDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if d, err := time.Parse(dueDateLayout, s); err == nil {
		return &d, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, errs.Validation("due_date must be YYYY-MM-DD")
	}
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &d, nil
}

func parseStatus(v int) (models.TaskStatus, error) {
	s := models.TaskStatus(v)
	if !s.Valid() {
		return 0, errs.Validation("status must be 0, 1 or 2")
	}
	return s, nil
}

func (s *TaskService) ListByProject(ctx context.Context, userID, projectID uint) ([]models.TaskDetail, error) {
	if _, _, err := s.Scope.Project(ctx, userID, projectID, policy.TaskRead, policy.Resource{}); err != nil {
		return nil, err
	}
	tasks, err := s.Tasks.ByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return s.details(ctx, tasks)
}

func (s *TaskService) details(ctx context.Context, tasks []models.Task) ([]models.TaskDetail, error) {
	ids := make([]uint, len(tasks))
	for i := range tasks {
		ids[i] = tasks[i].ID
	}
	byTask, err := s.Tasks.AssigneesByTasks(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]models.TaskDetail, 0, len(tasks))
	for _, t := range tasks {
		assignees := byTask[t.ID]
		if assignees == nil {
			assignees = []uint{}
		}
		out = append(out, models.TaskDetail{Task: t, AssigneeIDs: assignees})
	}
	return out, nil
}

func (s *TaskService) Get(ctx context.Context, userID, taskID uint) (*models.TaskDetail, error) {
	task, _, err := s.Scope.Task(ctx, userID, taskID, policy.TaskRead, policy.Resource{})
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, task)
}

func (s *TaskService) detail(ctx context.Context, task *models.Task) (*models.TaskDetail, error) {
	assignees, err := s.Tasks.Assignees(ctx, task.ID)
	if err != nil {
		return nil, err
	}
	if assignees == nil {
		assignees = []uint{}
	}
	return &models.TaskDetail{Task: *task, AssigneeIDs: assignees}, nil
}

// Create validates every assignee against the team before writing anything,
// then stores the task with its assignments and notifies each assignee.
func (s *TaskService) Create(ctx context.Context, userID uint, in CreateTaskInput) (*models.TaskDetail, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	_, team, err := s.Scope.Project(ctx, userID, in.ProjectID, policy.TaskCreate, policy.Resource{})
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Priority:    models.DefaultPriority,
		Status:      models.StatusTodo,
		ProjectID:   in.ProjectID,
		CreatedBy:   userID,
	}
	if in.DueDate != nil {
		if task.DueDate, err = ParseDueDate(*in.DueDate); err != nil {
			return nil, err
		}
	}
	if in.Priority != nil {
		task.Priority = *in.Priority
	}
	if in.Status != nil {
		if task.Status, err = parseStatus(*in.Status); err != nil {
			return nil, err
		}
	}

	assignees := in.AssigneeIDs
	if len(assignees) == 0 && in.AssigneeID != nil {
		assignees = []uint{*in.AssigneeID}
	}
	assignees = utils.UniqueIDs(assignees)
	if err := s.Authorizer.ValidateAssignees(ctx, team.ID, assignees); err != nil {
		return nil, err
	}

	if err := s.Tasks.Create(ctx, task, assignees); err != nil {
		return nil, err
	}
	s.Fanout.Assigned(ctx, task, assignees)
	if assignees == nil {
		assignees = []uint{}
	}
	return &models.TaskDetail{Task: *task, AssigneeIDs: assignees}, nil
}

// Update applies a partial update. A status change into done sends the
// completion notice, and a replaced assignee set notifies only additions.
func (s *TaskService) Update(ctx context.Context, userID, taskID uint, in UpdateTaskInput) (*models.TaskDetail, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	task, team, err := s.Scope.Task(ctx, userID, taskID, policy.TaskUpdate, policy.Resource{})
	if err != nil {
		return nil, err
	}

	var proposed []uint
	if in.AssigneeIDs != nil {
		proposed = utils.UniqueIDs(*in.AssigneeIDs)
		if err := s.Authorizer.ValidateAssignees(ctx, team.ID, proposed); err != nil {
			return nil, err
		}
	}

	fields := map[string]interface{}{}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, errs.Validation("title is required")
		}
		fields["title"] = title
		task.Title = title
	}
	if in.Description != nil {
		fields["description"] = *in.Description
		task.Description = *in.Description
	}
	if in.DueDate != nil {
		due, err := ParseDueDate(*in.DueDate)
		if err != nil {
			return nil, err
		}
		fields["due_date"] = due
		task.DueDate = due
	}
	if in.Priority != nil {
		fields["priority"] = *in.Priority
		task.Priority = *in.Priority
	}
	var status *models.TaskStatus
	if in.Status != nil {
		st, err := parseStatus(*in.Status)
		if err != nil {
			return nil, err
		}
		status = &st
	}

	if len(fields) > 0 {
		if err := s.Tasks.UpdateFields(ctx, task.ID, fields); err != nil {
			return nil, err
		}
	}
	if status != nil {
		if err := s.applyStatus(ctx, task, *status); err != nil {
			return nil, err
		}
	}
	if in.AssigneeIDs != nil {
		current, err := s.Tasks.Assignees(ctx, task.ID)
		if err != nil {
			return nil, err
		}
		if _, err := s.Fanout.Replace(ctx, task, current, proposed); err != nil {
			return nil, err
		}
	}
	return s.detail(ctx, task)
}

func (s *TaskService) UpdateStatus(ctx context.Context, userID, taskID uint, status int) (*models.TaskDetail, error) {
	st, err := parseStatus(status)
	if err != nil {
		return nil, err
	}
	task, _, err := s.Scope.Task(ctx, userID, taskID, policy.TaskUpdate, policy.Resource{})
	if err != nil {
		return nil, err
	}
	if err := s.applyStatus(ctx, task, st); err != nil {
		return nil, err
	}
	return s.detail(ctx, task)
}

// applyStatus writes the status only when it differs from the stored one.
// The conditional write makes the completion notice fire once per transition
// even with concurrent requests.
func (s *TaskService) applyStatus(ctx context.Context, task *models.Task, status models.TaskStatus) error {
	changed, err := s.Tasks.SetStatus(ctx, task.ID, status)
	if err != nil {
		return err
	}
	task.Status = status
	if !changed || status != models.StatusDone {
		return nil
	}
	assignees, err := s.Tasks.Assignees(ctx, task.ID)
	if err != nil {
		return err
	}
	s.Fanout.Completed(ctx, task, assignees)
	return nil
}

func (s *TaskService) ReplaceAssignees(ctx context.Context, userID, taskID uint, ids []uint) (*models.TaskDetail, error) {
	task, team, err := s.Scope.Task(ctx, userID, taskID, policy.TaskAssign, policy.Resource{})
	if err != nil {
		return nil, err
	}
	proposed := utils.UniqueIDs(ids)
	if err := s.Authorizer.ValidateAssignees(ctx, team.ID, proposed); err != nil {
		return nil, err
	}
	current, err := s.Tasks.Assignees(ctx, task.ID)
	if err != nil {
		return nil, err
	}
	if _, err := s.Fanout.Replace(ctx, task, current, proposed); err != nil {
		return nil, err
	}
	return s.detail(ctx, task)
}

func (s *TaskService) AddAssignee(ctx context.Context, userID, taskID, assigneeID uint) (*models.TaskDetail, error) {
	task, team, err := s.Scope.Task(ctx, userID, taskID, policy.TaskAssign, policy.Resource{TargetUserID: assigneeID})
	if err != nil {
		return nil, err
	}
	if err := s.Authorizer.ValidateAssignees(ctx, team.ID, []uint{assigneeID}); err != nil {
		return nil, err
	}
	current, err := s.Tasks.Assignees(ctx, task.ID)
	if err != nil {
		return nil, err
	}
	if _, err := s.Fanout.Extend(ctx, task, current, []uint{assigneeID}); err != nil {
		return nil, err
	}
	return s.detail(ctx, task)
}

func (s *TaskService) RemoveAssignee(ctx context.Context, userID, taskID, assigneeID uint) error {
	task, _, err := s.Scope.Task(ctx, userID, taskID, policy.TaskAssign, policy.Resource{TargetUserID: assigneeID})
	if err != nil {
		return err
	}
	removed, err := s.Tasks.RemoveAssignee(ctx, task.ID, assigneeID)
	if err != nil {
		return err
	}
	if !removed {
		return errs.NotFound("assignment not found")
	}
	return nil
}

// Delete is reserved for the team creator
func (s *TaskService) Delete(ctx context.Context, userID, taskID uint) error {
	task, _, err := s.Scope.Task(ctx, userID, taskID, policy.TaskDelete, policy.Resource{})
	if err != nil {
		return err
	}
	if err := s.Tasks.Delete(ctx, task.ID); err != nil {
		return err
	}
	utils.LogEvent("task_deleted", map[string]interface{}{"task_id": task.ID, "user_id": userID})
	return nil
}
