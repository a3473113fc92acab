package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/salon-scheduler/internal/application"
	"github.com/example/salon-scheduler/internal/domain"
)

type CustomerHandler struct {
	service   authService
	responder responder
	logger    *slog.Logger
}

func NewCustomerHandler(service authService, logger *slog.Logger) *CustomerHandler {
	base := defaultLogger(logger)
	return &CustomerHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *CustomerHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "CustomerHandler", operation, attrs...)
}

// Register creates a customer account. Field rules are enforced by the
// auth service so its messages reach the client unchanged.
func (h *CustomerHandler) Register(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req registerRequest
	if !h.responder.decode(r.Context(), w, r, &req) {
		return
	}

	logger := h.log(r.Context(), "Register", "username", req.Username)

	user, err := h.service.RegisterCustomer(r.Context(), application.RegisterCustomerParams{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		PhoneNumber:     req.PhoneNumber,
		Username:        req.Username,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		logger.WarnContext(r.Context(), "registration failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("user_id", user.ID).InfoContext(r.Context(), "customer registered")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, customerResponse{
		Customer: toCustomerDTO(user),
		Message:  "Registration successful",
	})
}

type registerRequest struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	PhoneNumber     string `json:"phone_number"`
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type customerDTO struct {
	ID          int64     `json:"id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	PhoneNumber string    `json:"phone_number"`
	Username    string    `json:"username"`
	CreatedAt   time.Time `json:"created_at"`
}

type customerResponse struct {
	Customer customerDTO `json:"customer"`
	Message  string      `json:"message"`
}

func toCustomerDTO(u domain.User) customerDTO {
	return customerDTO{
		ID:          u.ID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		PhoneNumber: u.PhoneNumber,
		Username:    u.Username,
		CreatedAt:   u.CreatedAt,
	}
}
