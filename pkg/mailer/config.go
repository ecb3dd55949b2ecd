package mailer

// Config holds mailer defaults shared by every transport provider.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	// DefaultSender is used as the From address when the caller provides none.
	DefaultSender string `env:"DEFAULT_SENDER" envDefault:"payment@example.com"`

	// FallbackSubject is used when a template id has no subject pattern.
	FallbackSubject string `env:"MAILER_FALLBACK_SUBJECT" envDefault:"Notification"`

	// SandboxMode short-circuits delivery to an immediate success after input
	// validation, without touching the network. Lets upstream integration
	// suites exercise calling code against no live mail transport.
	SandboxMode bool `env:"TESTING"`
}
