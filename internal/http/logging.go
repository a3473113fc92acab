package http

import (
	"context"
	"log/slog"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// handlerLogger prefers the request scoped logger installed by RequestLogger,
// which already carries request_id, and tags it with the handler, the
// operation and the caller's role when one is authenticated.
func handlerLogger(ctx context.Context, fallback *slog.Logger, handlerName, operation string, attrs ...any) *slog.Logger {
	logger := LoggerFromContext(ctx)
	if logger == nil {
		logger = defaultLogger(fallback)
	}

	pairs := make([]any, 0, 6+len(attrs))
	pairs = append(pairs, "handler", handlerName, "operation", operation)
	if principal, ok := PrincipalFromContext(ctx); ok {
		pairs = append(pairs, "account_id", principal.AccountID)
	}
	return logger.With(append(pairs, attrs...)...)
}
