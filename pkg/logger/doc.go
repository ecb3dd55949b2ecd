// Package logger provides structured logging with context extraction and
// optional Sentry integration on top of log/slog.
//
// Context extractors inject request-scoped values (request id, source
// service) into every record logged with a context:
//
//	requestID := func(ctx context.Context) (slog.Attr, bool) {
//		if id := middleware.GetReqID(ctx); id != "" {
//			return slog.String("request_id", id), true
//		}
//		return slog.Attr{}, false
//	}
//
//	log := logger.New(requestID)
//	log.InfoContext(ctx, "email sent", slog.Int("recipients", 2))
//
// NewWithSentry adds error forwarding to Sentry with graceful fallback to
// stdout-only logging when no DSN is configured; NewDebug enables verbose
// transport logging; NewNope discards everything and is the default for
// components constructed without a logger.
package logger
