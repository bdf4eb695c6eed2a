package service

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"sigap-backend/internal/config"
	"sigap-backend/internal/logger"
)

// sendGridEmailService mirrors workflow events to the configured admin
// mailbox through SendGrid. With no API key or admin address configured it
// degrades to a no-op, which keeps local development mail-free.
type sendGridEmailService struct {
	apiKey     string
	fromEmail  string
	fromName   string
	adminEmail string
}

func NewEmailService(cfg config.EmailConfig) EmailService {
	return &sendGridEmailService{
		apiKey:     cfg.SendGridAPIKey,
		fromEmail:  cfg.FromEmail,
		fromName:   cfg.FromName,
		adminEmail: cfg.AdminEmail,
	}
}

func (s *sendGridEmailService) enabled() bool {
	return s.apiKey != "" && s.adminEmail != ""
}

func (s *sendGridEmailService) send(subject, plainText string) error {
	if !s.enabled() {
		logger.Debug("email disabled, skipping", "subject", subject)
		return nil
	}
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail("Administrator", s.adminEmail)
	message := mail.NewSingleEmail(from, subject, to, plainText, "")

	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}

func (s *sendGridEmailService) SendSubmissionAlert(ctx context.Context, submitterName, fokontany string, submissionID int64) error {
	subject := "New residence submission"
	body := fmt.Sprintf("%s submitted residence draft #%d", submitterName, submissionID)
	if fokontany != "" {
		body += " in " + fokontany
	}
	return s.send(subject, body+".")
}

func (s *sendGridEmailService) SendPasswordResetAlert(ctx context.Context, fullName, immatricule string) error {
	return s.send("Password reset requested",
		fmt.Sprintf("%s (badge %s) requested a password reset and awaits approval.", fullName, immatricule))
}

func (s *sendGridEmailService) SendPasswordChangeAlert(ctx context.Context, fullName, username string) error {
	return s.send("Password change requested",
		fmt.Sprintf("%s (%s) requested a password change and awaits approval.", fullName, username))
}
