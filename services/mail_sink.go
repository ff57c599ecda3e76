package services

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"taskhub/models"
	"taskhub/utils"
)

type MailSender interface {
	Send(ctx context.Context, to, name, subject, message string) error
}

// MailSink emails a copy of each notification in the background
type MailSink struct {
	Mailer  MailSender
	Users   UserStore
	Log     *logrus.Entry
	Timeout time.Duration

	wg sync.WaitGroup
}

func NewMailSink(mailer MailSender, users UserStore, log *logrus.Entry) *MailSink {
	return &MailSink{Mailer: mailer, Users: users, Log: log, Timeout: 30 * time.Second}
}

func (m *MailSink) Deliver(_ context.Context, n models.Notification) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		// Detached from the request so the send outlives the response.
		ctx, cancel := context.WithTimeout(context.Background(), m.Timeout)
		defer cancel()

		user, err := m.Users.ByID(ctx, n.UserID)
		if err != nil {
			m.Log.WithError(err).WithField("user_id", n.UserID).Warn("notification email skipped")
			return
		}
		if err := m.Mailer.Send(ctx, user.Email, user.FirstName, n.Title, n.Message); err != nil {
			utils.LogError("notification_email_failed", err, map[string]interface{}{
				"user_id":         n.UserID,
				"notification_id": n.ID,
			})
		}
	}()
}

// Wait blocks until in-flight emails finish
func (m *MailSink) Wait() {
	m.wg.Wait()
}
