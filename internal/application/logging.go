package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/example/salon-scheduler/internal/logging"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// serviceLogger returns the request logger from ctx, or base outside a
// request, tagged with the use case being run.
func serviceLogger(ctx context.Context, base *slog.Logger, serviceName, operation string, attrs ...any) *slog.Logger {
	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = defaultLogger(base)
	}
	return logger.With(append([]any{"service", serviceName, "operation", operation}, attrs...)...)
}

// ErrorKind maps the error taxonomy to a stable label for the error_kind
// log attribute.
func ErrorKind(err error) string {
	var (
		vErr *ValidationError
		sErr *StorageError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &vErr):
		return "validation"
	case errors.As(err, &sErr):
		return "storage"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadyExists):
		return "already_exists"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrAccountRevoked):
		return "account_revoked"
	default:
		return "unexpected"
	}
}
