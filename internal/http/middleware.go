package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/example/salon-scheduler/internal/application"
)

const requestIDHeader = "X-Request-ID"

// TokenVerifier turns a bearer token into the principal it was issued for.
type TokenVerifier interface {
	Verify(raw string) (application.Principal, error)
}

// AccountResolver re-reads the account behind a verified token so removed
// accounts lose access before their tokens expire.
type AccountResolver interface {
	CurrentPrincipal(ctx context.Context, principal application.Principal) (application.Principal, error)
}

// HTTPObserver records one served request.
type HTTPObserver interface {
	ObserveHTTP(route, method string, status int, elapsed time.Duration)
}

// Authenticate attaches the principal of a valid bearer token to the request
// context. Requests without a token pass through anonymously; a token that
// fails verification, or whose account has been removed, is rejected with 401.
func Authenticate(verifier TokenVerifier, accounts AccountResolver, logger *slog.Logger) mux.MiddlewareFunc {
	responder := newResponder(logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" || verifier == nil {
				next.ServeHTTP(w, r)
				return
			}

			principal, err := verifier.Verify(token)
			if err != nil {
				responder.writeJSON(r.Context(), w, http.StatusUnauthorized, errorResponse{
					ErrorCode: "invalid_token",
					Message:   errInvalidToken.Error(),
				})
				return
			}

			if accounts != nil {
				principal, err = accounts.CurrentPrincipal(r.Context(), principal)
				if errors.Is(err, application.ErrAccountRevoked) {
					responder.writeJSON(r.Context(), w, http.StatusUnauthorized, errorResponse{
						ErrorCode: "account_revoked",
						Message:   errAccountRevoked.Error(),
					})
					return
				}
				if err != nil {
					responder.handleServiceError(r.Context(), w, err)
					return
				}
			}

			if logger := LoggerFromContext(r.Context()); logger != nil {
				r = r.WithContext(ContextWithLogger(r.Context(),
					logger.With("principal_role", principal.Role, "principal", principal.Username)))
			}
			next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), principal)))
		})
	}
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth(logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	responder := newResponder(logger)

	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if _, ok := PrincipalFromContext(r.Context()); !ok {
				responder.writeJSON(r.Context(), w, http.StatusUnauthorized, errorResponse{
					ErrorCode: "unauthenticated",
					Message:   errMissingToken.Error(),
				})
				return
			}
			next(w, r)
		}
	}
}

// RequestLogger tags each request with an id, taken from X-Request-ID when
// the caller supplies one, and logs its start and completion.
func RequestLogger(base *slog.Logger) mux.MiddlewareFunc {
	if base == nil {
		base = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get(requestIDHeader))
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, id)

			logger := base.With(
				"request_id", id,
				"method", r.Method,
				"path", r.URL.Path,
			)

			ctx := ContextWithRequestID(r.Context(), id)
			ctx = ContextWithLogger(ctx, logger)
			sw := &statusWriter{ResponseWriter: w}
			start := time.Now()
			logger.DebugContext(ctx, "request started")
			next.ServeHTTP(sw, r.WithContext(ctx))
			logger.InfoContext(ctx, "request completed", "status", sw.Status(), "duration", time.Since(start))
		})
	}
}

// Instrument reports every request to observer labelled with its route
// template, so /appointments/{id} is one series.
func Instrument(observer HTTPObserver) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		if observer == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := &statusWriter{ResponseWriter: w}
			start := time.Now()
			next.ServeHTTP(sw, r)

			route := "unmatched"
			if current := mux.CurrentRoute(r); current != nil {
				if tpl, err := current.GetPathTemplate(); err == nil {
					route = tpl
				}
			}
			observer.ObserveHTTP(route, r.Method, sw.Status(), time.Since(start))
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

func (w *statusWriter) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

func extractBearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) < 7 || !strings.EqualFold(header[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
