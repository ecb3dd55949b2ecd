package smtp

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"github.com/dmitrymomot/mailroom/pkg/config"
	"github.com/dmitrymomot/mailroom/pkg/mailer"
	"github.com/dmitrymomot/mailroom/pkg/metrics"
)

// Sender implements mailer.Sender over plain SMTP with STARTTLS.
//
// Each Send opens a fresh connection, performs one delivery attempt and
// closes the session; there is no pooling and no retry. The configured
// timeout is applied as a connection deadline, so the whole transaction is
// bounded at the transport layer.
type Sender struct {
	config Config
	log    *slog.Logger
}

// New creates an SMTP sender. Quote artifacts wrapping env values are
// stripped before use. A nil logger disables logging.
func New(cfg Config, log *slog.Logger) (*Sender, error) {
	cfg.Host = config.StripQuotes(cfg.Host)
	cfg.Username = config.StripQuotes(cfg.Username)
	cfg.Password = config.StripQuotes(cfg.Password)

	if cfg.Host == "" {
		return nil, fmt.Errorf("%w: Host is required", mailer.ErrInvalidConfig)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("%w: Port must be between 1 and 65535", mailer.ErrInvalidConfig)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Sender{config: cfg, log: log}, nil
}

// MustNew creates an SMTP sender that panics on invalid config.
// Broken transport configuration should prevent startup.
func MustNew(cfg Config, log *slog.Logger) *Sender {
	s, err := New(cfg, log)
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
	if err := ctx.Err(); err != nil {
		return errors.Join(mailer.ErrSendFailed, err)
	}

	addr := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))

	s.log.DebugContext(ctx, "smtp: connecting",
		slog.String("addr", addr),
		slog.Duration("timeout", s.config.Timeout))

	conn, err := net.DialTimeout("tcp", addr, s.config.Timeout)
	if err != nil {
		metrics.MailSendFailure.WithLabelValues(s.config.Host).Inc()
		return fmt.Errorf("smtp %s: failed to connect: %w", addr, err)
	}
	// Deadline bounds the entire transaction, not just the dial.
	_ = conn.SetDeadline(time.Now().Add(s.config.Timeout))

	client, err := smtp.NewClient(conn, s.config.Host)
	if err != nil {
		_ = conn.Close()
		metrics.MailSendFailure.WithLabelValues(s.config.Host).Inc()
		return fmt.Errorf("smtp %s: greeting failed: %w", addr, err)
	}
	defer func() { _ = client.Close() }()

	if err := s.transact(ctx, client, email); err != nil {
		metrics.MailSendFailure.WithLabelValues(s.config.Host).Inc()
		return fmt.Errorf("smtp %s: %w", addr, err)
	}

	metrics.MailSendSuccess.WithLabelValues(s.config.Host).Inc()
	return nil
}

// transact drives the SMTP session on an established connection:
// STARTTLS, optional AUTH, envelope submission, DATA, QUIT.
func (s *Sender) transact(ctx context.Context, client *smtp.Client, email *mailer.Email) error {
	s.log.DebugContext(ctx, "smtp: starting TLS")
	if err := client.StartTLS(&tls.Config{ServerName: s.config.Host}); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}

	// Sandbox servers accept unauthenticated sessions; only authenticate
	// when a username is configured.
	if s.config.Username != "" {
		s.log.DebugContext(ctx, "smtp: authenticating",
			slog.String("username", s.config.Username))
		auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("authentication failed: %w", err)
		}
	}

	if err := client.Mail(email.From); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}

	recipients := email.EnvelopeRecipients()
	s.log.DebugContext(ctx, "smtp: submitting envelope",
		slog.Int("recipients", len(recipients)))
	for _, rcpt := range recipients {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("failed to set recipient: %w", err)
		}
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to open data writer: %w", err)
	}
	if _, err := writer.Write(buildMessage(email, s.config.Host)); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := client.Quit(); err != nil {
		// The message was already accepted; some servers drop the
		// connection right after DATA, so a failed QUIT is not an error.
		s.log.DebugContext(ctx, "smtp: quit failed after accepted message",
			slog.String("error", err.Error()))
	}

	return nil
}
