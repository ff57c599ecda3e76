package utils

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"golang.org/x/time/rate"
	"gopkg.in/gomail.v2"

	"taskhub/config"
)

var notificationTemplate = template.Must(template.New("notification").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Title}}</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { color: #2c3e50; border-bottom: 1px solid #eee; padding-bottom: 10px; }
        .footer { margin-top: 30px; font-size: 12px; color: #7f8c8d; text-align: center; }
    </style>
</head>
<body>
    <div class="header"><h2>{{.Title}}</h2></div>
    <p>Hello {{.Name}},</p>
    <p>{{.Message}}</p>
    <div class="footer"><p>&copy; {{.Year}} TaskHub</p></div>
</body>
</html>`))

// Mailer sends notification copies over SMTP, paced by a token bucket so a
// scanner run with many assignees does not flood the relay.
type Mailer struct {
	dialer  *gomail.Dialer
	from    string
	limiter *rate.Limiter
}

func NewMailer(cfg config.SMTPConfig) *Mailer {
	perSecond := cfg.MailPerSecond
	if perSecond <= 0 {
		perSecond = 1
	}
	return &Mailer{
		dialer:  gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:    cfg.FromEmail,
		limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
	}
}

// RenderNotification builds the HTML body for a notification email
func RenderNotification(name, title, message string) (string, error) {
	var body bytes.Buffer
	err := notificationTemplate.Execute(&body, map[string]interface{}{
		"Name":    name,
		"Title":   title,
		"Message": message,
		"Year":    time.Now().Year(),
	})
	if err != nil {
		return "", fmt.Errorf("error executing template: %w", err)
	}
	return body.String(), nil
}

func (m *Mailer) Send(ctx context.Context, to, name, subject, message string) error {
	if err := m.limiter.Wait(ctx); err != nil {
		return err
	}

	body, err := RenderNotification(name, subject, message)
	if err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("error sending email: %w", err)
	}
	return nil
}
