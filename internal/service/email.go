package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

var ErrEmailNotConfigured = errors.New("email service not configured (missing RESEND_API_KEY)")

// Attachment is a file sent along with an email.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// EmailSender delivers a prepared message. resend.Client.Emails satisfies it.
type EmailSender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

type EmailService struct {
	sender    EmailSender
	fromEmail string
	isDev     bool
	appName   string
}

func NewEmailService(apiKey, fromEmail, appName string, isDev bool) *EmailService {
	var sender EmailSender
	if apiKey != "" && !isDev {
		sender = resend.NewClient(apiKey).Emails
	}

	return &EmailService{
		sender:    sender,
		fromEmail: fromEmail,
		isDev:     isDev,
		appName:   appName,
	}
}

// NewEmailServiceWithSender builds a service that delivers through sender.
func NewEmailServiceWithSender(sender EmailSender, fromEmail, appName string) *EmailService {
	return &EmailService{
		sender:    sender,
		fromEmail: fromEmail,
		appName:   appName,
	}
}

// Enabled reports whether SendReport can deliver (or, in development, log) an email.
func (s *EmailService) Enabled() bool {
	return s.isDev || s.sender != nil
}

func (s *EmailService) SendReport(ctx context.Context, to, address, body, link string, attachment *Attachment) error {
	subject, text := reportEmailTemplate(address, body, link, s.appName)

	if s.isDev {
		slog.Info("email sent (dev mode)", "type", "report", "to", to, "subject", subject, "url", link, "attachment", attachment != nil)
		return nil
	}

	if s.sender == nil {
		return ErrEmailNotConfigured
	}

	params := &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{to},
		Subject: subject,
		Text:    text,
	}
	if attachment != nil {
		params.Attachments = []*resend.Attachment{{
			Filename:    attachment.Filename,
			ContentType: attachment.ContentType,
			Content:     attachment.Content,
		}}
	}

	_, err := s.sender.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to send report email: %w", err)
	}

	slog.Info("email sent", "type", "report", "to", to, "attachment", attachment != nil)
	return nil
}
