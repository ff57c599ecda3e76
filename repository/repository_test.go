package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"taskhub/errs"
	"taskhub/models"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open gorm: %v", err)
	}
	return db, mock
}

func TestMembershipRepository_RoleOf(t *testing.T) {
	cases := []struct {
		name string
		rows *sqlmock.Rows
		want models.Role
	}{
		{"admin", sqlmock.NewRows([]string{"team_id", "user_id", "role", "joined_at"}).AddRow(1, 2, "admin", time.Now()), models.RoleAdmin},
		{"member", sqlmock.NewRows([]string{"team_id", "user_id", "role", "joined_at"}).AddRow(1, 2, "member", time.Now()), models.RoleMember},
		{"absent", sqlmock.NewRows([]string{"team_id", "user_id", "role", "joined_at"}), models.RoleNone},
		{"unknown role string", sqlmock.NewRows([]string{"team_id", "user_id", "role", "joined_at"}).AddRow(1, 2, "owner", time.Now()), models.RoleNone},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := &MembershipRepository{DB: db}

			mock.ExpectQuery(`SELECT \* FROM "memberships" WHERE team_id = \$1 AND user_id = \$2`).
				WillReturnRows(tc.rows)

			role, err := repo.RoleOf(context.Background(), 2, 1)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if role != tc.want {
				t.Errorf("role = %q, want %q", role, tc.want)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unmet expectations: %v", err)
			}
		})
	}
}

func TestMembershipRepository_RoleOfError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &MembershipRepository{DB: db}

	mock.ExpectQuery(`SELECT \* FROM "memberships"`).WillReturnError(errors.New("connection reset"))

	role, err := repo.RoleOf(context.Background(), 2, 1)
	if err == nil {
		t.Fatal("expected error")
	}
	if role != models.RoleNone {
		t.Errorf("role on error = %q, want none", role)
	}
}

func TestMembershipRepository_RemoveMember(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &MembershipRepository{DB: db}

	mock.ExpectExec(`DELETE FROM "memberships" WHERE team_id = \$1 AND user_id = \$2`).
		WithArgs(5, 9).
		WillReturnResult(sqlmock.NewResult(0, 1))

	removed, err := repo.RemoveMember(context.Background(), 9, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !removed {
		t.Error("expected a removed row")
	}
}

func TestTeamRepository_CreateWithOwner(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &TeamRepository{DB: db}

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "teams"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectExec(`INSERT INTO "memberships"`).
		WithArgs(11, 3, "admin", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	team := &models.Team{Name: "Platform", URL: "platform", CreatedBy: 3}
	if err := repo.CreateWithOwner(context.Background(), team); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if team.ID != 11 {
		t.Errorf("team id = %d, want 11", team.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestTeamRepository_CreateWithOwnerRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &TeamRepository{DB: db}

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "teams"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectExec(`INSERT INTO "memberships"`).
		WillReturnError(errors.New("fk violation"))
	mock.ExpectRollback()

	err := repo.CreateWithOwner(context.Background(), &models.Team{Name: "Platform", URL: "platform", CreatedBy: 3})
	if err == nil {
		t.Fatal("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestTeamRepository_ByURLNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &TeamRepository{DB: db}

	mock.ExpectQuery(`SELECT \* FROM "teams" WHERE url = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.ByURL(context.Background(), "missing")
	if !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestTaskRepository_SetAssignees(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &TaskRepository{DB: db}

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "assignments" WHERE task_id = \$1`).
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`INSERT INTO "assignments" .* ON CONFLICT DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	if err := repo.SetAssignees(context.Background(), 7, []uint{2, 3}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestTaskRepository_SetAssigneesEmptyClears(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &TaskRepository{DB: db}

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "assignments" WHERE task_id = \$1`).
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	if err := repo.SetAssignees(context.Background(), 7, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestTaskRepository_SetAssigneesRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &TaskRepository{DB: db}

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "assignments"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "assignments"`).WillReturnError(errors.New("deadlock"))
	mock.ExpectRollback()

	if err := repo.SetAssignees(context.Background(), 7, []uint{2}); err == nil {
		t.Fatal("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestTaskRepository_OverdueCandidates(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &TaskRepository{DB: db}
	today := time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT \* FROM "tasks" WHERE .*due_date <= \$1 AND status <> \$2.*NOT EXISTS \(SELECT 1 FROM notifications n WHERE n.task_id = tasks.id AND n.title = \$3\)`).
		WithArgs("2026-10-14", sqlmock.AnyArg(), models.TitleDeadlineReached).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "status"}).AddRow(4, "Ship", 0))

	tasks, err := repo.OverdueCandidates(context.Background(), today)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != 4 {
		t.Fatalf("unexpected tasks %+v", tasks)
	}
}

func TestTaskRepository_UpcomingCandidates(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &TaskRepository{DB: db}
	today := time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC)
	dayStart := time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT \* FROM "tasks" WHERE .*due_date = \$1.*n.title = \$3 AND n.created_at >= \$4 AND n.created_at < \$5`).
		WithArgs("2026-10-15", sqlmock.AnyArg(), models.TitleDueSoon, dayStart, dayStart.AddDate(0, 0, 1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}))

	tasks, err := repo.UpcomingCandidates(context.Background(), today.AddDate(0, 0, 1), today)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("expected no tasks, got %d", len(tasks))
	}
}

func TestNotificationRepository_Insert(t *testing.T) {
	key := "Task Deadline Reached:4:2"

	t.Run("written", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := &NotificationRepository{DB: db}

		mock.ExpectQuery(`INSERT INTO "notifications" .* ON CONFLICT DO NOTHING RETURNING "id"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(30))

		n := &models.Notification{Title: models.TitleDeadlineReached, Message: "m", UserID: 2, DedupKey: &key}
		ok, err := repo.Insert(context.Background(), n)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !ok || n.ID != 30 {
			t.Errorf("ok=%v id=%d", ok, n.ID)
		}
	})

	t.Run("duplicate key", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := &NotificationRepository{DB: db}

		mock.ExpectQuery(`INSERT INTO "notifications" .* ON CONFLICT DO NOTHING RETURNING "id"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		n := &models.Notification{Title: models.TitleDeadlineReached, Message: "m", UserID: 2, DedupKey: &key}
		ok, err := repo.Insert(context.Background(), n)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ok {
			t.Error("duplicate must report not written")
		}
	})
}

func TestCommentRepository_ToggleLike(t *testing.T) {
	t.Run("like", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := &CommentRepository{DB: db}

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "comment_likes" WHERE comment_id = \$1 AND user_id = \$2`).
			WithArgs(8, 3).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`INSERT INTO "comment_likes"`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE "comments" SET "like_count"=GREATEST\(like_count \+ \$1, 0\)`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`SELECT "like_count" FROM "comments"`).
			WillReturnRows(sqlmock.NewRows([]string{"like_count"}).AddRow(4))
		mock.ExpectCommit()

		liked, count, err := repo.ToggleLike(context.Background(), 8, 3)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !liked || count != 4 {
			t.Errorf("liked=%v count=%d", liked, count)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})

	t.Run("unlike", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := &CommentRepository{DB: db}

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "comment_likes"`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE "comments" SET "like_count"`).
			WithArgs(-1, sqlmock.AnyArg(), 8).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`SELECT "like_count" FROM "comments"`).
			WillReturnRows(sqlmock.NewRows([]string{"like_count"}).AddRow(0))
		mock.ExpectCommit()

		liked, count, err := repo.ToggleLike(context.Background(), 8, 3)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if liked || count != 0 {
			t.Errorf("liked=%v count=%d", liked, count)
		}
	})
}

func TestUserRepository_UpdateMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &UserRepository{DB: db}

	mock.ExpectExec(`UPDATE "users" SET`).WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), 99, map[string]interface{}{"first_name": "Ada"})
	if !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestTaskRepository_SetStatus(t *testing.T) {
	cases := []struct {
		name     string
		affected int64
		want     bool
	}{
		{"transition", 1, true},
		{"already in status", 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := &TaskRepository{DB: db}

			mock.ExpectExec(`UPDATE "tasks" SET "status"=\$1,"updated_at"=\$2 WHERE .*id = \$3 AND status <> \$4`).
				WillReturnResult(sqlmock.NewResult(0, tc.affected))

			changed, err := repo.SetStatus(context.Background(), 5, models.StatusDone)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if changed != tc.want {
				t.Errorf("changed = %v, want %v", changed, tc.want)
			}
		})
	}
}

func TestTaskRepository_AssigneesByTasks(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &TaskRepository{DB: db}

	mock.ExpectQuery(`SELECT \* FROM "assignments" WHERE task_id IN \(\$1,\$2\)`).
		WillReturnRows(sqlmock.NewRows([]string{"task_id", "user_id", "assigned_at"}).
			AddRow(1, 2, time.Now()).
			AddRow(1, 3, time.Now()).
			AddRow(4, 2, time.Now()))

	got, err := repo.AssigneesByTasks(context.Background(), []uint{1, 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got[1]) != 2 || len(got[4]) != 1 {
		t.Errorf("unexpected grouping %v", got)
	}
}
