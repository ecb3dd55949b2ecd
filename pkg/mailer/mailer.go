package mailer

import (
	"context"
	"io"
	"log/slog"
)

// Mailer is the delivery engine: it normalizes recipients, applies sender
// defaults and drives the configured transport provider. Template rendering
// is delegated to the Registry.
type Mailer struct {
	sender   Sender
	registry *Registry
	config   Config
	log      *slog.Logger
}

// New creates a Mailer with the given transport provider and registry.
// A nil logger disables logging.
func New(sender Sender, registry *Registry, cfg Config, log *slog.Logger) *Mailer {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Mailer{
		sender:   sender,
		registry: registry,
		config:   cfg,
		log:      log,
	}
}

// Registry exposes the template registry for subject lookups.
func (m *Mailer) Registry() *Registry {
	return m.registry
}

// SendEmailParams contains parameters for sending a pre-rendered email.
type SendEmailParams struct {
	To      Recipients // required, at least one non-blank address
	CC      Recipients
	BCC     Recipients
	Subject string
	HTML    string // HTML body, required
	Text    string // plain-text alternative, optional
	From    string // defaults to Config.DefaultSender
}

// SendEmail performs one synchronous delivery attempt and reports success.
//
// An empty recipient set is a contract violation reported as false without
// any network activity. Transport failures are logged and reported as false;
// they never propagate as errors — callers must check the result. In sandbox
// mode the call succeeds immediately after validation.
func (m *Mailer) SendEmail(ctx context.Context, params SendEmailParams) bool {
	to := params.To.Normalize()
	if len(to) == 0 {
		m.log.WarnContext(ctx, "email rejected: no recipients",
			slog.String("subject", params.Subject))
		return false
	}

	from := params.From
	if from == "" {
		from = m.config.DefaultSender
	}

	if m.config.SandboxMode {
		m.log.InfoContext(ctx, "sandbox mode enabled, skipping delivery",
			slog.String("subject", params.Subject),
			slog.Int("recipients", len(to)))
		return true
	}

	email := &Email{
		Subject: params.Subject,
		HTML:    params.HTML,
		Text:    params.Text,
		From:    from,
		To:      to,
		CC:      params.CC.Normalize(),
		BCC:     params.BCC.Normalize(),
	}

	if err := m.sender.Send(ctx, email); err != nil {
		m.log.ErrorContext(ctx, "email delivery failed",
			slog.Int("recipients", len(email.EnvelopeRecipients())),
			slog.String("error", err.Error()))
		return false
	}

	m.log.InfoContext(ctx, "email sent",
		slog.String("subject", params.Subject),
		slog.Int("recipients", len(email.EnvelopeRecipients())))
	return true
}

// SendTemplateParams contains parameters for sending a templated email.
type SendTemplateParams struct {
	To         Recipients
	CC         Recipients
	BCC        Recipients
	TemplateID string
	Data       map[string]string

	// Subject, when set, is used verbatim and no pattern substitution occurs.
	Subject string
	// From defaults to Config.DefaultSender.
	From string
}

// SendTemplate renders a registry template and delivers the result.
//
// Rendering failures (unknown template id, broken substitution) are returned
// as errors for the caller to map to a failure response. Delivery failures
// follow the SendEmail contract and surface only through the bool.
func (m *Mailer) SendTemplate(ctx context.Context, params SendTemplateParams) (bool, error) {
	html, text, err := m.registry.Render(params.TemplateID, params.Data)
	if err != nil {
		return false, err
	}

	subject := params.Subject
	if subject == "" {
		subject = SubstituteSubject(m.registry.Subject(params.TemplateID), params.Data)
	}

	return m.SendEmail(ctx, SendEmailParams{
		To:      params.To,
		CC:      params.CC,
		BCC:     params.BCC,
		Subject: subject,
		HTML:    html,
		Text:    text,
		From:    params.From,
	}), nil
}
