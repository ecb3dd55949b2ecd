package smtp

import "time"

// Config holds SMTP transport configuration.
// Username and Password may both be empty: permissive sandbox servers accept
// unauthenticated connections, and AUTH is skipped when no username is set.
type Config struct {
	Host     string        `env:"SMTP_SERVER" envDefault:"sandbox.smtp.mailtrap.io"`
	Port     int           `env:"SMTP_PORT" envDefault:"2525"`
	Username string        `env:"SMTP_USERNAME"`
	Password string        `env:"SMTP_PASSWORD"`
	Timeout  time.Duration `env:"SMTP_TIMEOUT" envDefault:"30s"`
}
