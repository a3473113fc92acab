package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/salon-scheduler/internal/application"
	"github.com/example/salon-scheduler/internal/domain"
	"github.com/example/salon-scheduler/internal/token"
)

type authService interface {
	Login(ctx context.Context, username, password string) application.LoginResult
	RegisterCustomer(ctx context.Context, params application.RegisterCustomerParams) (domain.User, error)
}

// TokenIssuer signs a bearer token for an authenticated principal.
type TokenIssuer interface {
	Issue(principal application.Principal) (token.Issued, error)
}

type SessionHandler struct {
	service   authService
	issuer    TokenIssuer
	responder responder
	logger    *slog.Logger
}

func NewSessionHandler(service authService, issuer TokenIssuer, logger *slog.Logger) *SessionHandler {
	base := defaultLogger(logger)
	return &SessionHandler{service: service, issuer: issuer, responder: newResponder(base), logger: base}
}

func (h *SessionHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "SessionHandler", operation, attrs...)
}

// Create logs a user in and returns a bearer token.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil || h.issuer == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req loginRequest
	if !h.responder.decode(r.Context(), w, r, &req) {
		return
	}

	logger := h.log(r.Context(), "Create", "username", req.Username)

	result := h.service.Login(r.Context(), req.Username, req.Password)
	if !result.Success {
		logger.WarnContext(r.Context(), "login rejected", "error_kind", application.ErrorKind(result.Err))
		status := http.StatusUnauthorized
		code := "invalid_credentials"
		var sErr *application.StorageError
		if errors.As(result.Err, &sErr) {
			status = http.StatusInternalServerError
			code = "storage_error"
		}
		h.responder.writeJSON(r.Context(), w, status, errorResponse{ErrorCode: code, Message: result.Message})
		return
	}

	issued, err := h.issuer.Issue(result.Principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to issue token", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusInternalServerError, nil)
		return
	}

	logger.InfoContext(r.Context(), "session created", "role", result.Principal.Role)
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, sessionResponse{
		Token:     issued.Token,
		ExpiresAt: issued.ExpiresAt.UTC(),
		Role:      string(result.Principal.Role),
		Username:  result.Principal.Username,
		Message:   result.Message,
	})
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type sessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Role      string    `json:"role"`
	Username  string    `json:"username"`
	Message   string    `json:"message"`
}
