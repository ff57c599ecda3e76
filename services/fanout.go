package services

import (
	"context"
	"fmt"

	"taskhub/models"
)

// Emitter is the best-effort notification entry point
type Emitter interface {
	Notify(ctx context.Context, userID uint, title, message string, taskID *uint)
}

// Fanout turns assignment and status changes into notifications
type Fanout struct {
	Tasks    AssignmentWriter
	Notifier Emitter
}

func NewFanout(tasks AssignmentWriter, notifier Emitter) *Fanout {
	return &Fanout{Tasks: tasks, Notifier: notifier}
}

// Added returns the ids in proposed that are not in current, in proposed order
func Added(current, proposed []uint) []uint {
	have := make(map[uint]struct{}, len(current))
	for _, id := range current {
		have[id] = struct{}{}
	}
	var out []uint
	for _, id := range proposed {
		if _, ok := have[id]; ok {
			continue
		}
		have[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Replace swaps the assignee set for proposed and notifies the additions.
// Retained and dropped users hear nothing.
func (f *Fanout) Replace(ctx context.Context, task *models.Task, current, proposed []uint) ([]uint, error) {
	added := Added(current, proposed)
	if err := f.Tasks.SetAssignees(ctx, task.ID, proposed); err != nil {
		return nil, fmt.Errorf("set assignees: %w", err)
	}
	f.Assigned(ctx, task, added)
	return added, nil
}

// Extend adds proposed to the current set and notifies the additions
func (f *Fanout) Extend(ctx context.Context, task *models.Task, current, proposed []uint) ([]uint, error) {
	added := Added(current, proposed)
	for _, id := range added {
		if err := f.Tasks.AddAssignee(ctx, task.ID, id); err != nil {
			return nil, fmt.Errorf("add assignee %d: %w", id, err)
		}
	}
	f.Assigned(ctx, task, added)
	return added, nil
}

// Assigned notifies users who were just assigned. The rows must already be written.
func (f *Fanout) Assigned(ctx context.Context, task *models.Task, users []uint) {
	taskID := task.ID
	for _, id := range users {
		f.Notifier.Notify(ctx, id, models.TitleTaskAssigned,
			fmt.Sprintf("You have been assigned to task: %s", task.Title), &taskID)
	}
}

// Completed notifies every assignee that the task is done. Callers invoke it
// only on an observed transition into done.
func (f *Fanout) Completed(ctx context.Context, task *models.Task, assignees []uint) {
	taskID := task.ID
	for _, id := range assignees {
		f.Notifier.Notify(ctx, id, models.TitleTaskCompleted,
			fmt.Sprintf("The task \"%s\" has been marked as completed", task.Title), &taskID)
	}
}

func (f *Fanout) AddedToTeam(ctx context.Context, team *models.Team, userID uint) {
	f.Notifier.Notify(ctx, userID, models.TitleAddedToTeam,
		fmt.Sprintf("You have been added to the team: %s", team.Name), nil)
}
