package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"taskhub/metrics"
	"taskhub/models"
	"taskhub/utils"
)

// Sink receives every notification row after it has been persisted.
// Deliver must not block the caller for long and never fails the emit.
type Sink interface {
	Deliver(ctx context.Context, n models.Notification)
}

// Notifier persists notifications and hands them to the delivery sinks
type Notifier struct {
	Store NotificationStore
	Sinks []Sink
	Log   *logrus.Entry
}

func NewNotifier(store NotificationStore, log *logrus.Entry, sinks ...Sink) *Notifier {
	return &Notifier{Store: store, Sinks: sinks, Log: log}
}

// Emit writes one notification. With a non-empty dedupKey the write is
// conditional and the boolean reports whether a new row was created.
func (n *Notifier) Emit(ctx context.Context, userID uint, title, message string, taskID *uint, dedupKey string) (bool, error) {
	row := &models.Notification{
		Title:   title,
		Message: message,
		TaskID:  taskID,
		UserID:  userID,
	}
	if dedupKey != "" {
		row.DedupKey = &dedupKey
	}

	written, err := n.Store.Insert(ctx, row)
	if err != nil {
		metrics.NotificationFailures.WithLabelValues(title).Inc()
		return false, err
	}
	if !written {
		metrics.NotificationsSkipped.WithLabelValues(title).Inc()
		return false, nil
	}
	metrics.NotificationsCreated.WithLabelValues(title).Inc()

	for _, sink := range n.Sinks {
		sink.Deliver(ctx, *row)
	}
	return true, nil
}

// Notify is the best-effort path used by request handlers. Failures are
// logged and swallowed so the triggering operation still succeeds.
func (n *Notifier) Notify(ctx context.Context, userID uint, title, message string, taskID *uint) {
	if _, err := n.Emit(ctx, userID, title, message, taskID, ""); err != nil {
		fields := map[string]interface{}{"user_id": userID, "title": title}
		if taskID != nil {
			fields["task_id"] = *taskID
		}
		utils.LogError("notification_failed", err, fields)
	}
}

func (n *Notifier) ForUser(ctx context.Context, userID uint, limit int) ([]models.Notification, error) {
	switch {
	case limit <= 0:
		limit = 50
	case limit > 200:
		limit = 200
	}
	return n.Store.ForUser(ctx, userID, limit)
}
