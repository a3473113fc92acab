package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/salon-scheduler/internal/application"
	"github.com/example/salon-scheduler/internal/domain"
)

type employeeService interface {
	AddEmployee(ctx context.Context, principal application.Principal, params application.AddEmployeeParams) (domain.Employee, error)
	RemoveEmployee(ctx context.Context, principal application.Principal, id int64) error
	ListEmployees(ctx context.Context, principal application.Principal) ([]domain.Employee, error)
	ListByPosition(ctx context.Context, principal application.Principal, position string) ([]domain.Employee, error)
}

type EmployeeHandler struct {
	service   employeeService
	responder responder
	logger    *slog.Logger
}

func NewEmployeeHandler(service employeeService, logger *slog.Logger) *EmployeeHandler {
	base := defaultLogger(logger)
	return &EmployeeHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *EmployeeHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "EmployeeHandler", operation, attrs...)
}

// List returns every employee, or with ?position= only those holding it.
func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	position := strings.TrimSpace(r.URL.Query().Get("position"))

	var (
		emps []domain.Employee
		err  error
	)
	if position != "" {
		emps, err = h.service.ListByPosition(r.Context(), principal, position)
	} else {
		emps, err = h.service.ListEmployees(r.Context(), principal)
	}
	if err != nil {
		h.log(r.Context(), "List", "position", position).ErrorContext(r.Context(), "employee listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]employeeDTO, 0, len(emps))
	for _, emp := range emps {
		dtos = append(dtos, toEmployeeDTO(emp))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, employeeListResponse{Employees: dtos})
}

func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req employeeRequest
	if !h.responder.decode(r.Context(), w, r, &req) {
		return
	}

	logger := h.log(r.Context(), "Create", "username", req.Username)
	emp, err := h.service.AddEmployee(r.Context(), principal, application.AddEmployeeParams{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Position:    req.Position,
		PhoneNumber: req.PhoneNumber,
		Username:    req.Username,
		Password:    req.Password,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "employee creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("employee_id", emp.ID).InfoContext(r.Context(), "employee created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, employeeResponse{Employee: toEmployeeDTO(emp)})
}

func (h *EmployeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := pathID(r)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "employee_id", id)
	if err := h.service.RemoveEmployee(r.Context(), principal, id); err != nil {
		logger.ErrorContext(r.Context(), "employee delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "employee deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type employeeRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Position    string `json:"position"`
	PhoneNumber string `json:"phone_number"`
	Username    string `json:"username"`
	Password    string `json:"password"`
}

type employeeDTO struct {
	ID          int64     `json:"id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Position    string    `json:"position"`
	PhoneNumber string    `json:"phone_number"`
	Username    string    `json:"username"`
	CreatedAt   time.Time `json:"created_at"`
}

type employeeResponse struct {
	Employee employeeDTO `json:"employee"`
}

type employeeListResponse struct {
	Employees []employeeDTO `json:"employees"`
}

func toEmployeeDTO(e domain.Employee) employeeDTO {
	return employeeDTO{
		ID:          e.ID,
		FirstName:   e.FirstName,
		LastName:    e.LastName,
		Position:    string(e.Position),
		PhoneNumber: e.PhoneNumber,
		Username:    e.Username,
		CreatedAt:   e.CreatedAt,
	}
}
