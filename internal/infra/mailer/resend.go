package mailer

import (
	"context"
	"log/slog"

	"smartpark/internal/pkg/config"
	"smartpark/internal/pkg/errs"
	"smartpark/internal/usecase/outbox"

	"github.com/resend/resend-go/v2"
)

// ResendMailer delivers outbox emails through the Resend API.
type ResendMailer struct {
	client *resend.Client
	from   string
}

func NewResendMailer(cfg config.MailConfig) *ResendMailer {
	return &ResendMailer{
		client: resend.NewClient(cfg.APIKey),
		from:   cfg.From,
	}
}

func (m *ResendMailer) Send(ctx context.Context, msg outbox.EmailMessage) error {
	subject, html, err := Render(msg)
	if err != nil {
		return err
	}

	sent, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{msg.To},
		Subject: subject,
		Html:    html,
	})
	if err != nil {
		return errs.Wrapf(err, "failed to send %s email", msg.Template)
	}
	slog.Info("email sent", "template", msg.Template, "email_id", sent.Id)
	return nil
}

// LogMailer is used when no API key is configured.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, msg outbox.EmailMessage) error {
	subject, _, err := Render(msg)
	if err != nil {
		return err
	}
	slog.Info("email delivery disabled, dropping message", "template", msg.Template, "to", msg.To, "subject", subject)
	return nil
}

// New picks the Resend mailer when an API key is configured.
func New(cfg config.MailConfig) outbox.Mailer {
	if cfg.APIKey == "" {
		return LogMailer{}
	}
	return NewResendMailer(cfg)
}
