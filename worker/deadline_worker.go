package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"taskhub/metrics"
	"taskhub/models"
	"taskhub/utils"
)

const (
	passOverdue  = "overdue"
	passUpcoming = "upcoming"
	dayLayout    = "2006-01-02"
)

// DeadlineStore is what the scanner reads
type DeadlineStore interface {
	OverdueCandidates(ctx context.Context, today time.Time) ([]models.Task, error)
	UpcomingCandidates(ctx context.Context, due, today time.Time) ([]models.Task, error)
	Assignees(ctx context.Context, taskID uint) ([]uint, error)
}

// Emitter writes one notification, conditionally on dedupKey
type Emitter interface {
	Emit(ctx context.Context, userID uint, title, message string, taskID *uint, dedupKey string) (bool, error)
}

// PassResult counts candidate tasks and those that produced a new row
type PassResult struct {
	Checked  int `json:"checked"`
	Notified int `json:"notified"`
}

// DeadlineWorker periodically sends overdue and due-soon reminders
type DeadlineWorker struct {
	Tasks         DeadlineStore
	Notifier      Emitter
	Interval      time.Duration
	InitialDelay  time.Duration
	LookaheadDays int
	Now           func() time.Time
	Log           *logrus.Entry

	trigger chan struct{}
}

func NewDeadlineWorker(tasks DeadlineStore, notifier Emitter, log *logrus.Entry) *DeadlineWorker {
	return &DeadlineWorker{
		Tasks:         tasks,
		Notifier:      notifier,
		Interval:      time.Hour,
		InitialDelay:  10 * time.Second,
		LookaheadDays: 1,
		Now:           time.Now,
		Log:           log,
		trigger:       make(chan struct{}, 1),
	}
}

// Start blocks until ctx is done. It runs once after InitialDelay, then on
// every tick and whenever Trigger is called.
func (w *DeadlineWorker) Start(ctx context.Context) {
	delay := time.NewTimer(w.InitialDelay)
	defer delay.Stop()

	select {
	case <-ctx.Done():
		return
	case <-delay.C:
	}

	w.Log.WithField("interval", w.Interval.String()).Info("Deadline worker started")
	w.RunOnce(ctx)

	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.Log.Info("Deadline worker shutting down...")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		case <-w.trigger:
			w.RunOnce(ctx)
		}
	}
}

// Trigger asks for an extra run. It never blocks; a request made while one
// is already pending is dropped and false is returned.
func (w *DeadlineWorker) Trigger() bool {
	select {
	case w.trigger <- struct{}{}:
		return true
	default:
		return false
	}
}

// RunOnce runs both passes. Errors are logged and the next tick retries.
func (w *DeadlineWorker) RunOnce(ctx context.Context) {
	if res, err := w.RunOverduePass(ctx); err != nil {
		utils.LogError("deadline_overdue_pass", err, nil)
	} else {
		w.Log.WithFields(logrus.Fields{"checked": res.Checked, "notified": res.Notified}).Debug("overdue pass finished")
	}
	if res, err := w.RunUpcomingPass(ctx, w.LookaheadDays); err != nil {
		utils.LogError("deadline_upcoming_pass", err, nil)
	} else {
		w.Log.WithFields(logrus.Fields{"checked": res.Checked, "notified": res.Notified}).Debug("upcoming pass finished")
	}
}

func (w *DeadlineWorker) today() time.Time {
	now := w.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

func (w *DeadlineWorker) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now()
}

// RunOverduePass notifies the assignees of unfinished tasks whose due date
// has arrived. Each task is reported at most once over its lifetime.
func (w *DeadlineWorker) RunOverduePass(ctx context.Context) (PassResult, error) {
	start := time.Now()
	defer func() { metrics.DeadlineDuration.WithLabelValues(passOverdue).Observe(time.Since(start).Seconds()) }()

	tasks, err := w.Tasks.OverdueCandidates(ctx, w.today())
	if err != nil {
		metrics.DeadlineRuns.WithLabelValues(passOverdue, "error").Inc()
		return PassResult{}, fmt.Errorf("overdue candidates: %w", err)
	}

	res := PassResult{Checked: len(tasks)}
	for i := range tasks {
		task := &tasks[i]
		message := fmt.Sprintf("The task \"%s\" has reached its due date", task.Title)
		keyFor := func(userID uint) string {
			return fmt.Sprintf("%s:%d:%d", models.TitleDeadlineReached, task.ID, userID)
		}
		if w.notifyTask(ctx, passOverdue, task, models.TitleDeadlineReached, message, keyFor) {
			res.Notified++
		}
	}
	metrics.DeadlineRuns.WithLabelValues(passOverdue, "ok").Inc()
	return res, nil
}

// RunUpcomingPass notifies the assignees of unfinished tasks due exactly
// daysAhead days from today, once per task per day. daysAhead below 1 is an
// error.
func (w *DeadlineWorker) RunUpcomingPass(ctx context.Context, daysAhead int) (PassResult, error) {
	start := time.Now()
	defer func() { metrics.DeadlineDuration.WithLabelValues(passUpcoming).Observe(time.Since(start).Seconds()) }()

	if daysAhead < 1 {
		return PassResult{}, fmt.Errorf("upcoming pass: daysAhead must be at least 1, got %d", daysAhead)
	}
	today := w.today()
	due := today.AddDate(0, 0, daysAhead)

	tasks, err := w.Tasks.UpcomingCandidates(ctx, due, today)
	if err != nil {
		metrics.DeadlineRuns.WithLabelValues(passUpcoming, "error").Inc()
		return PassResult{}, fmt.Errorf("upcoming candidates: %w", err)
	}

	day := today.Format(dayLayout)
	res := PassResult{Checked: len(tasks)}
	for i := range tasks {
		task := &tasks[i]
		message := fmt.Sprintf("The task \"%s\" is due in %d day(s)", task.Title, daysAhead)
		keyFor := func(userID uint) string {
			return fmt.Sprintf("%s:%d:%d:%s", models.TitleDueSoon, task.ID, userID, day)
		}
		if w.notifyTask(ctx, passUpcoming, task, models.TitleDueSoon, message, keyFor) {
			res.Notified++
		}
	}
	metrics.DeadlineRuns.WithLabelValues(passUpcoming, "ok").Inc()
	return res, nil
}

// notifyTask emits to every assignee and reports whether any new row was
// written. Failures are logged per task so the pass can continue.
func (w *DeadlineWorker) notifyTask(ctx context.Context, pass string, task *models.Task, title, message string, keyFor func(uint) string) bool {
	log := w.Log.WithFields(logrus.Fields{"pass": pass, "task_id": task.ID})

	assignees, err := w.Tasks.Assignees(ctx, task.ID)
	if err != nil {
		log.WithError(err).Warn("failed to load assignees")
		metrics.DeadlineTasks.WithLabelValues(pass, "error").Inc()
		return false
	}

	taskID := task.ID
	written := false
	for _, userID := range assignees {
		ok, err := w.Notifier.Emit(ctx, userID, title, message, &taskID, keyFor(userID))
		if err != nil {
			log.WithError(err).WithField("user_id", userID).Warn("failed to emit deadline notification")
			continue
		}
		written = written || ok
	}

	outcome := "skipped"
	if written {
		outcome = "notified"
	}
	metrics.DeadlineTasks.WithLabelValues(pass, outcome).Inc()
	return written
}
