// Command mailroom runs the transactional email dispatch service.
//
// Provider selection, SMTP credentials, and sandbox mode all come from the
// environment; see the pkg/config structs for the full variable list.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/mailroom/internal/handlers"
	"github.com/dmitrymomot/mailroom/pkg/config"
	"github.com/dmitrymomot/mailroom/pkg/logger"
	"github.com/dmitrymomot/mailroom/pkg/mailer"
	"github.com/dmitrymomot/mailroom/pkg/mailer/resend"
	"github.com/dmitrymomot/mailroom/pkg/mailer/smtp"
	"github.com/dmitrymomot/mailroom/pkg/metrics"
	"github.com/dmitrymomot/mailroom/templates"
)

type appConfig struct {
	Port            int           `env:"PORT" envDefault:"8000"`
	Provider        string        `env:"MAILER_PROVIDER" envDefault:"smtp"`
	DevOutputDir    string        `env:"DEV_MAIL_DIR" envDefault:"./outbox"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	var appCfg appConfig
	config.MustLoad(&appCfg)

	var sentryCfg logger.SentryConfig
	config.MustLoad(&sentryCfg)

	log := logger.NewWithSentry(sentryCfg, requestIDExtractor).With(
		slog.String("service", "mailroom"),
	)

	var mailerCfg mailer.Config
	config.MustLoad(&mailerCfg)

	registry := mailer.MustNewRegistry(templates.FS, mailer.RegistryConfig{
		FallbackSubject: mailerCfg.FallbackSubject,
	})

	sender, err := newSender(appCfg, log)
	if err != nil {
		return err
	}

	m := mailer.New(sender, registry, mailerCfg, log)

	h := handlers.New(m, log)
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Handle("/metrics", metrics.Handler())
	h.Routes(r)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", appCfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting",
			slog.String("addr", srv.Addr),
			slog.String("provider", appCfg.Provider),
			slog.Bool("sandbox", mailerCfg.SandboxMode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), appCfg.ShutdownTimeout)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}

// newSender builds the delivery backend selected by MAILER_PROVIDER.
func newSender(cfg appConfig, log *slog.Logger) (mailer.Sender, error) {
	switch cfg.Provider {
	case "smtp":
		var smtpCfg smtp.Config
		config.MustLoad(&smtpCfg)
		return smtp.New(smtpCfg, log)
	case "resend":
		var resendCfg resend.Config
		config.MustLoad(&resendCfg)
		return resend.New(resendCfg)
	case "dev":
		return mailer.NewDevSender(cfg.DevOutputDir), nil
	default:
		return nil, fmt.Errorf("unknown mailer provider %q", cfg.Provider)
	}
}

// requestIDExtractor surfaces the chi request id on every log line.
func requestIDExtractor(ctx context.Context) (slog.Attr, bool) {
	if id := middleware.GetReqID(ctx); id != "" {
		return slog.String("request_id", id), true
	}
	return slog.Attr{}, false
}
