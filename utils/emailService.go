package utils

import (
	"context"
	"coursehub/logger"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sirupsen/logrus"
)

// Mailer sends transactional HTML email.
type Mailer interface {
	Send(ctx context.Context, to, toName, subject, htmlBody string) error
}

// SendgridMailer delivers through the SendGrid v3 API.
type SendgridMailer struct {
	client *sendgrid.Client
	from   *mail.Email
}

func NewSendgridMailer(apiKey, sender string) *SendgridMailer {
	return &SendgridMailer{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail("CourseHub", sender),
	}
}

func (m *SendgridMailer) Send(ctx context.Context, to, toName, subject, htmlBody string) error {
	message := mail.NewSingleEmail(m.from, subject, mail.NewEmail(toName, to), "", htmlBody)

	resp, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned %d: %s", resp.StatusCode, resp.Body)
	}

	logger.Log.WithField("to", to).Info("email sent")
	return nil
}

// LogMailer only logs outgoing mail. Used when no SendGrid key is configured.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, to, _, subject, _ string) error {
	logger.Log.WithFields(logrus.Fields{"to": to, "subject": subject}).Warn("email not sent: mailer not configured")
	return nil
}

// NewMailer picks SendGrid when a key is present.
func NewMailer(apiKey, sender string) Mailer {
	if apiKey == "" {
		return LogMailer{}
	}
	return NewSendgridMailer(apiKey, sender)
}

// HTML Wrapper shared by all transactional mail
func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; }
			.header { background-color: #1F2A44; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #1F2A44; line-height: 1.6; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; }
			.btn { display: inline-block; padding: 12px 24px; background-color: #3B82F6; color: #FFFFFF; text-decoration: none; border-radius: 4px; font-weight: bold; margin-top: 20px; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header">
				<h1>COURSEHUB</h1>
			</div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">
				You received this email because of activity on your CourseHub account.
			</div>
		</div>
	</body>
	</html>
	`, title, bodyContent)
}

// PasswordResetEmail renders the reset link mail.
func PasswordResetEmail(name, link string, validMinutes int) (subject, html string) {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>We received a request to reset your password. The link below is valid for %d minutes.</p>
		<a class="btn" href="%s">Reset password</a>
		<p>If you did not request a reset, you can ignore this email.</p>
	`, name, validMinutes, link)

	return "Reset your CourseHub password", getEmailTemplate("Password reset", body)
}

// EnrollmentEmail confirms a course purchase.
func EnrollmentEmail(name, courseTitle, price string) (subject, html string) {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>You have successfully enrolled in:</p>
		<h3>%s</h3>
		<p>%s was debited from your wallet. You can now watch every video of the course.</p>
		<p>Happy learning!</p>
	`, name, courseTitle, price)

	return "Course enrollment confirmation", getEmailTemplate("Enrollment successful", body)
}
