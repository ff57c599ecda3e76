package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taskhub/models"
)

const dateLayout = "2006-01-02"

type TaskRepository struct {
	DB *gorm.DB
}

// Create inserts the task and its initial assignees atomically
func (r *TaskRepository) Create(ctx context.Context, task *models.Task, assignees []uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(task).Error; err != nil {
			return err
		}
		return insertAssignments(tx, task.ID, assignees)
	})
}

func (r *TaskRepository) ByID(ctx context.Context, id uint) (*models.Task, error) {
	var task models.Task
	if err := r.DB.WithContext(ctx).First(&task, id).Error; err != nil {
		return nil, notFound(err, "task")
	}
	return &task, nil
}

func (r *TaskRepository) ByProject(ctx context.Context, projectID uint) ([]models.Task, error) {
	var tasks []models.Task
	err := r.DB.WithContext(ctx).Where("project_id = ?", projectID).Order("id").Find(&tasks).Error
	return tasks, err
}

// ByTeam returns every live task across the team's live projects
func (r *TaskRepository) ByTeam(ctx context.Context, teamID uint) ([]models.Task, error) {
	var tasks []models.Task
	err := r.DB.WithContext(ctx).
		Joins("JOIN projects p ON p.id = tasks.project_id AND p.deleted_at IS NULL").
		Where("p.team_id = ?", teamID).
		Order("tasks.id").
		Find(&tasks).Error
	return tasks, err
}

func (r *TaskRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Model(&models.Task{}).Where("id = ?", id).Updates(fields).Error
}

// SetStatus writes the status only when it differs from the stored one. The
// boolean reports whether the row actually changed, which makes the
// non-done to done transition observable exactly once.
func (r *TaskRepository) SetStatus(ctx context.Context, id uint, status models.TaskStatus) (bool, error) {
	res := r.DB.WithContext(ctx).
		Model(&models.Task{}).
		Where("id = ? AND status <> ?", id, status).
		Update("status", status)
	return res.RowsAffected > 0, res.Error
}

func (r *TaskRepository) Delete(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Delete(&models.Task{}, id).Error
}

func (r *TaskRepository) Assignees(ctx context.Context, taskID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.WithContext(ctx).
		Model(&models.Assignment{}).
		Where("task_id = ?", taskID).
		Order("user_id").
		Pluck("user_id", &ids).Error
	return ids, err
}

// AssigneesByTasks loads assignee ids for many tasks in one query
func (r *TaskRepository) AssigneesByTasks(ctx context.Context, taskIDs []uint) (map[uint][]uint, error) {
	out := make(map[uint][]uint, len(taskIDs))
	if len(taskIDs) == 0 {
		return out, nil
	}
	var rows []models.Assignment
	err := r.DB.WithContext(ctx).
		Where("task_id IN ?", taskIDs).
		Order("task_id, user_id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.TaskID] = append(out[row.TaskID], row.UserID)
	}
	return out, nil
}

// SetAssignees replaces the assignee set in one transaction
func (r *TaskRepository) SetAssignees(ctx context.Context, taskID uint, userIDs []uint) error {
	tx := r.DB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}

	if err := tx.Where("task_id = ?", taskID).Delete(&models.Assignment{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := insertAssignments(tx, taskID, userIDs); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

func (r *TaskRepository) AddAssignee(ctx context.Context, taskID, userID uint) error {
	return insertAssignments(r.DB.WithContext(ctx), taskID, []uint{userID})
}

func (r *TaskRepository) RemoveAssignee(ctx context.Context, taskID, userID uint) (bool, error) {
	res := r.DB.WithContext(ctx).
		Where("task_id = ? AND user_id = ?", taskID, userID).
		Delete(&models.Assignment{})
	return res.RowsAffected > 0, res.Error
}

// AssignmentsByTeam lists assignment rows for live tasks in the team
func (r *TaskRepository) AssignmentsByTeam(ctx context.Context, teamID uint) ([]models.Assignment, error) {
	var rows []models.Assignment
	err := r.DB.WithContext(ctx).
		Table("assignments AS a").
		Select("a.task_id, a.user_id, a.assigned_at").
		Joins("JOIN tasks t ON t.id = a.task_id AND t.deleted_at IS NULL").
		Joins("JOIN projects p ON p.id = t.project_id AND p.deleted_at IS NULL").
		Where("p.team_id = ?", teamID).
		Scan(&rows).Error
	return rows, err
}

// OverdueCandidates selects unfinished tasks due on or before today that have
// never received a deadline-reached notification.
func (r *TaskRepository) OverdueCandidates(ctx context.Context, today time.Time) ([]models.Task, error) {
	var tasks []models.Task
	err := r.DB.WithContext(ctx).
		Where("due_date <= ? AND status <> ?", today.Format(dateLayout), models.StatusDone).
		Where("NOT EXISTS (SELECT 1 FROM notifications n WHERE n.task_id = tasks.id AND n.title = ?)",
			models.TitleDeadlineReached).
		Order("id").
		Find(&tasks).Error
	return tasks, err
}

// UpcomingCandidates selects unfinished tasks due exactly on due that have not
// received a due-soon notification during today.
func (r *TaskRepository) UpcomingCandidates(ctx context.Context, due, today time.Time) ([]models.Task, error) {
	dayStart := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	var tasks []models.Task
	err := r.DB.WithContext(ctx).
		Where("due_date = ? AND status <> ?", due.Format(dateLayout), models.StatusDone).
		Where("NOT EXISTS (SELECT 1 FROM notifications n WHERE n.task_id = tasks.id AND n.title = ? AND n.created_at >= ? AND n.created_at < ?)",
			models.TitleDueSoon, dayStart, dayEnd).
		Order("id").
		Find(&tasks).Error
	return tasks, err
}

func insertAssignments(tx *gorm.DB, taskID uint, userIDs []uint) error {
	if len(userIDs) == 0 {
		return nil
	}
	rows := make([]models.Assignment, 0, len(userIDs))
	for _, id := range userIDs {
		rows = append(rows, models.Assignment{TaskID: taskID, UserID: id})
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Omit(clause.Associations).Create(&rows).Error
}
