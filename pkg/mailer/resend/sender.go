// Package resend implements mailer.Sender using the Resend API.
// It exists as an alternative transport for deployments without SMTP
// credentials; the provider is selected once at startup.
package resend

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v3"

	"github.com/dmitrymomot/mailroom/pkg/config"
	"github.com/dmitrymomot/mailroom/pkg/mailer"
	"github.com/dmitrymomot/mailroom/pkg/metrics"
)

// metricsHost labels delivery metrics for this provider.
const metricsHost = "resend"

// Sender implements mailer.Sender using the Resend API.
type Sender struct {
	client *resend.Client
	config Config
}

// New creates a Resend sender.
func New(cfg Config) (*Sender, error) {
	cfg.APIKey = config.StripQuotes(cfg.APIKey)
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: APIKey is required", mailer.ErrInvalidConfig)
	}
	return &Sender{
		client: resend.NewClient(cfg.APIKey),
		config: cfg,
	}, nil
}

// MustNew creates a Resend sender that panics on invalid config.
func MustNew(cfg Config) *Sender {
	s, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return s
}

// Send implements mailer.Sender.
func (s *Sender) Send(ctx context.Context, email *mailer.Email) error {
	if len(email.To) == 0 {
		return mailer.ErrNoRecipient
	}

	from := email.From
	if s.config.SenderName != "" {
		from = mailer.Recipient(s.config.SenderName, email.From)
	}

	req := &resend.SendEmailRequest{
		From:    from,
		To:      email.To,
		Cc:      email.CC,
		Bcc:     email.BCC,
		Subject: email.Subject,
		Html:    email.HTML,
		Text:    email.Text,
	}

	if _, err := s.client.Emails.SendWithContext(ctx, req); err != nil {
		metrics.MailSendFailure.WithLabelValues(metricsHost).Inc()
		return fmt.Errorf("resend: failed to send email: %w", err)
	}

	metrics.MailSendSuccess.WithLabelValues(metricsHost).Inc()
	return nil
}
